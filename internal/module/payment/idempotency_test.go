package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryEventStore(t *testing.T) {
	ctx := context.Background()

	t.Run("unseen ids are processable", func(t *testing.T) {
		s := NewMemoryEventStore(time.Hour)
		defer s.Stop()
		assert.True(t, s.ShouldProcess(ctx, "evt_1"))
	})

	t.Run("marked ids are short-circuited", func(t *testing.T) {
		s := NewMemoryEventStore(time.Hour)
		defer s.Stop()
		s.MarkProcessed(ctx, "evt_1")
		assert.False(t, s.ShouldProcess(ctx, "evt_1"))
		assert.True(t, s.ShouldProcess(ctx, "evt_2"))
	})

	t.Run("expired entries become processable again", func(t *testing.T) {
		s := NewMemoryEventStore(time.Millisecond)
		defer s.Stop()
		s.MarkProcessed(ctx, "evt_1")
		time.Sleep(5 * time.Millisecond)
		assert.True(t, s.ShouldProcess(ctx, "evt_1"))
	})

	t.Run("ids without stable identity bypass deduplication", func(t *testing.T) {
		s := NewMemoryEventStore(time.Hour)
		defer s.Stop()

		s.MarkProcessed(ctx, "")
		s.MarkProcessed(ctx, EventIDUnknown)
		assert.True(t, s.ShouldProcess(ctx, ""))
		assert.True(t, s.ShouldProcess(ctx, EventIDUnknown))
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		s := NewMemoryEventStore(time.Hour)
		s.Stop()
		s.Stop()
	})
}
