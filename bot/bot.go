// Package bot runs the update loop and hands updates to the dispatcher.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"go.uber.org/ratelimit"

	"github.com/OleksandrShchur/FindIFBot/internal/dispatch"
)

// Bot wraps the telego update channel and dispatches each update in its
// own goroutine.
type Bot struct {
	updatesChan <-chan telego.Update
	dispatcher  *dispatch.Dispatcher
	ratelimiter ratelimit.Limiter
	debug       bool
}

// Deps holds the dependencies required by the Bot.
type Deps struct {
	UpdatesChan <-chan telego.Update
	Dispatcher  *dispatch.Dispatcher
	Debug       bool
}

// New creates a new Bot instance from its dependencies.
func New(deps Deps) (*Bot, error) {
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	return &Bot{
		updatesChan: deps.UpdatesChan,
		dispatcher:  deps.Dispatcher,
		ratelimiter: ratelimit.New(20),
		debug:       deps.Debug,
	}, nil
}

// Start consumes the update channel until the context is cancelled or
// the channel closes. Each update is processed in its own goroutine.
func (b *Bot) Start(ctx context.Context) {
	log.Println("Listening for updates...")

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// Stop gracefully stops the bot. The actual stop is triggered by
// context cancellation; this only stops the album timers.
func (b *Bot) Stop() {
	b.dispatcher.Shutdown()
	log.Println("Bot stopped.")
}

func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	// Apply global rate limiting
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(time.Second * 2)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if b.debug {
		log.Printf("Processing update %d", update.UpdateID)
	}

	if err := b.dispatcher.Dispatch(processingCtx, update); err != nil {
		log.Printf("Error processing update %d: %v", update.UpdateID, err)
		sentry.CaptureException(fmt.Errorf("update %d dispatch error: %w", update.UpdateID, err))
	}
}
