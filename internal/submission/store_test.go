package submission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		s := NewStore()
		_, ok := s.TryGet(42)
		assert.False(t, ok)
	})

	t.Run("save and get", func(t *testing.T) {
		s := NewStore()
		sub := Submission{ChatID: 1, UserID: 2, Text: "selling a bike"}
		s.Save(42, sub)
		got, ok := s.TryGet(42)
		assert.True(t, ok)
		assert.Equal(t, sub, got)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := NewStore()
		s.Save(42, Submission{Text: "first"})
		s.Save(42, Submission{Text: "second"})
		got, ok := s.TryGet(42)
		assert.True(t, ok)
		assert.Equal(t, "second", got.Text)
	})

	t.Run("remove", func(t *testing.T) {
		s := NewStore()
		s.Save(42, Submission{Text: "gone"})
		s.Remove(42)
		_, ok := s.TryGet(42)
		assert.False(t, ok)
	})

	t.Run("remove missing key is a no-op", func(t *testing.T) {
		s := NewStore()
		s.Remove(42)
		_, ok := s.TryGet(42)
		assert.False(t, ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		s := NewStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				s.Save(id, Submission{UserID: int64(id)})
				s.TryGet(id)
				s.Remove(id)
			}(i)
		}
		wg.Wait()
	})
}

func TestSubmissionHasPhotos(t *testing.T) {
	assert.False(t, Submission{}.HasPhotos())
	assert.True(t, Submission{PhotoIDs: []string{"file-1"}}.HasPhotos())
}
