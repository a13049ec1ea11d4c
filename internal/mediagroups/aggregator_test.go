package mediagroups

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu      sync.Mutex
	batches [][]telego.Message
}

func (c *capture) process(_ context.Context, _ string, messages []telego.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, messages)
	return nil
}

func (c *capture) wait(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		n := len(c.batches)
		c.mu.Unlock()
		if n >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d batch(es), processor was not called enough", want)
}

func msg(id int) telego.Message {
	return telego.Message{MessageID: id, MediaGroupID: "album-1"}
}

func TestAggregatorDrainsAfterQuiescence(t *testing.T) {
	c := &capture{}
	a := NewAggregator(50*time.Millisecond, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(3)))
	require.NoError(t, a.Add(1, "album-1", msg(1)))
	require.NoError(t, a.Add(1, "album-1", msg(2)))

	c.wait(t, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.batches, 1)
	batch := c.batches[0]
	require.Len(t, batch, 3)
	assert.Equal(t, 1, batch[0].MessageID)
	assert.Equal(t, 2, batch[1].MessageID)
	assert.Equal(t, 3, batch[2].MessageID)
}

func TestAggregatorFiresOnce(t *testing.T) {
	c := &capture{}
	a := NewAggregator(50*time.Millisecond, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(1)))
	require.NoError(t, a.Add(1, "album-1", msg(2)))

	c.wait(t, 1)
	time.Sleep(150 * time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.batches, 1)
}

func TestAggregatorWindowStartsAtFirstArrival(t *testing.T) {
	c := &capture{}
	a := NewAggregator(80*time.Millisecond, c.process)
	defer a.Shutdown()

	// A slow trickle of parts must not postpone the drain: the window is
	// anchored to the first message, so later parts arriving past it are
	// rejected even though each gap is shorter than the delay.
	var rejected bool
	for i := 1; i <= 6; i++ {
		err := a.Add(1, "album-1", msg(i))
		if err != nil {
			require.ErrorIs(t, err, ErrAlreadyProcessed)
			rejected = true
		}
		time.Sleep(60 * time.Millisecond)
	}

	c.wait(t, 1)

	assert.True(t, rejected)
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.batches, 1)
	assert.Less(t, len(c.batches[0]), 6)
	assert.Equal(t, 1, c.batches[0][0].MessageID)
}

func TestAggregatorDrainedGroupCannotReopen(t *testing.T) {
	c := &capture{}
	a := NewAggregator(time.Hour, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(1)))
	a.drain("1:album-1", "album-1")

	err := a.Add(1, "album-1", msg(2))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.batches, 1)
	assert.Len(t, c.batches[0], 1)
}

func TestAggregatorRejectsLateArrivals(t *testing.T) {
	c := &capture{}
	a := NewAggregator(50*time.Millisecond, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(1)))
	c.wait(t, 1)

	err := a.Add(1, "album-1", msg(2))
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	time.Sleep(150 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.batches, 1)
}

func TestAggregatorDeduplicatesByMessageID(t *testing.T) {
	c := &capture{}
	a := NewAggregator(50*time.Millisecond, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(1)))
	require.NoError(t, a.Add(1, "album-1", msg(1)))

	c.wait(t, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.batches, 1)
	assert.Len(t, c.batches[0], 1)
}

func TestAggregatorSeparatesUsers(t *testing.T) {
	c := &capture{}
	a := NewAggregator(50*time.Millisecond, c.process)
	defer a.Shutdown()

	require.NoError(t, a.Add(1, "album-1", msg(1)))
	require.NoError(t, a.Add(2, "album-1", msg(2)))

	c.wait(t, 2)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.batches, 2)
	assert.Len(t, c.batches[0], 1)
	assert.Len(t, c.batches[1], 1)
}
