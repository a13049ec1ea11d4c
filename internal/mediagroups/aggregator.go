// Package mediagroups collects the messages of a Telegram album and
// hands them over as one batch once the album has gone quiet.
package mediagroups

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mymmrac/telego"
)

const (
	// DefaultProcessDelay is how long an album must stay quiet before
	// its collected messages are processed.
	DefaultProcessDelay = 2 * time.Second
	// drainedRetention is how long a processed album key is remembered
	// so that stragglers can be rejected instead of starting a new batch.
	drainedRetention = 1 * time.Minute
	// maxGroupSize caps how many messages one album may buffer.
	maxGroupSize = 100
)

// ErrAlreadyProcessed is returned by Add when a message arrives for an
// album that has already been drained and handed to the processor.
var ErrAlreadyProcessed = errors.New("media group already processed")

// ProcessFunc handles a complete album. Messages are sorted by message ID.
type ProcessFunc func(ctx context.Context, groupID string, messages []telego.Message) error

type groupState struct {
	mu       sync.Mutex
	messages []telego.Message
}

// Aggregator buffers album messages per user and group, firing the
// process function once no new message has arrived for the configured
// delay.
type Aggregator struct {
	groups  sync.Map // key string -> *groupState
	timers  sync.Map // key string -> *time.Timer
	drained sync.Map // key string -> struct{}
	delay   time.Duration
	process ProcessFunc
}

// NewAggregator creates an aggregator that calls process for each
// completed album. A non-positive delay falls back to DefaultProcessDelay.
func NewAggregator(delay time.Duration, process ProcessFunc) *Aggregator {
	if delay <= 0 {
		delay = DefaultProcessDelay
	}
	return &Aggregator{delay: delay, process: process}
}

// Add buffers one album message. The first message of an album schedules
// the one-shot quiescence timer; later messages only append to the
// buffer. Once the timer fires, the batch is drained and the album key
// is remembered for a while so late arrivals get ErrAlreadyProcessed
// instead of opening a fresh batch.
func (a *Aggregator) Add(userID int64, groupID string, msg telego.Message) error {
	key := fmt.Sprintf("%d:%s", userID, groupID)

	if _, done := a.drained.Load(key); done {
		return ErrAlreadyProcessed
	}

	stateAny, _ := a.groups.LoadOrStore(key, &groupState{})
	state := stateAny.(*groupState)

	state.mu.Lock()
	defer state.mu.Unlock()

	// The group may have been drained between the check above and
	// taking the lock.
	if _, done := a.drained.Load(key); done {
		return ErrAlreadyProcessed
	}

	for _, existing := range state.messages {
		if existing.MessageID == msg.MessageID {
			return nil
		}
	}
	if len(state.messages) >= maxGroupSize {
		log.Printf("[MediaGroup:%s] Buffer full (%d messages), dropping message %d", groupID, maxGroupSize, msg.MessageID)
		return nil
	}

	wasEmpty := len(state.messages) == 0
	state.messages = append(state.messages, msg)
	sort.Slice(state.messages, func(i, j int) bool {
		return state.messages[i].MessageID < state.messages[j].MessageID
	})

	if wasEmpty {
		timer := time.AfterFunc(a.delay, func() {
			a.drain(key, groupID)
		})
		a.timers.Store(key, timer)
	}
	return nil
}

func (a *Aggregator) drain(key, groupID string) {
	// Mark the key drained before removing the group so a concurrent
	// Add cannot reopen the batch in between.
	a.drained.Store(key, struct{}{})
	time.AfterFunc(drainedRetention, func() {
		a.drained.Delete(key)
	})

	stateAny, loaded := a.groups.LoadAndDelete(key)
	a.timers.Delete(key)
	if !loaded {
		return
	}

	state := stateAny.(*groupState)
	state.mu.Lock()
	messages := state.messages
	state.messages = nil
	state.mu.Unlock()

	if len(messages) == 0 {
		return
	}

	if err := a.process(context.Background(), groupID, messages); err != nil {
		log.Printf("[MediaGroup:%s] Error processing %d message(s): %v", groupID, len(messages), err)
	}
}

// Shutdown stops all pending timers. Buffered albums are abandoned.
func (a *Aggregator) Shutdown() {
	a.timers.Range(func(key, timerAny interface{}) bool {
		timerAny.(*time.Timer).Stop()
		a.timers.Delete(key)
		return true
	})
}
