package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "nonsense", ""} {
		log := NewLogger(level)
		require.NotNil(t, log)
		// Derived loggers are independent values.
		assert.NotNil(t, log.WithField("k", "v"))
	}
}

func TestRecorder(t *testing.T) {
	t.Run("captures entries with fields", func(t *testing.T) {
		rec := NewRecorder()
		rec.WithField("template_id", "tpl-1").Warn("upload failed")
		rec.Info("done")

		entries := rec.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "warn", entries[0].Level)
		assert.Equal(t, "upload failed", entries[0].Message)
		assert.Equal(t, "tpl-1", entries[0].Fields["template_id"])
		assert.Empty(t, entries[1].Fields)
	})

	t.Run("WithField does not mutate the parent", func(t *testing.T) {
		rec := NewRecorder()
		derived := rec.WithField("a", 1).WithField("b", 2)
		rec.Error("parent")
		derived.Error("derived")

		entries := rec.Entries()
		require.Len(t, entries, 2)
		assert.Empty(t, entries[0].Fields)
		assert.Len(t, entries[1].Fields, 2)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		rec := NewRecorder()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec.WithField("n", 1).Warn("concurrent")
			}()
		}
		wg.Wait()
		assert.Len(t, rec.Entries(), 16)
	})

	t.Run("WithFields merges everything", func(t *testing.T) {
		rec := NewRecorder()
		rec.WithFields(map[string]interface{}{"a": 1, "b": 2}).Info("msg")
		entries := rec.Entries()
		require.Len(t, entries, 1)
		assert.Len(t, entries[0].Fields, 2)
	})
}
