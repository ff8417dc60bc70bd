package diskv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
	"github.com/recovera/timeline-service/internal/store/storetest"
)

func TestDiskvStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New(t.TempDir()) })
}

func TestListStopsKeyWalkOnCorruptRecord(t *testing.T) {
	base := t.TempDir()
	s := New(base)
	ctx := context.Background()

	require.NoError(t, s.Timelines().Put(ctx, &model.Timeline{ID: "tl-1", WorkspaceID: "ws"}))
	junk := filepath.Join(base, "timelines", "ws", "junk")
	require.NoError(t, os.WriteFile(junk, []byte("{"), 0o644))

	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		_, err := s.Timelines().List(ctx, "ws")
		require.ErrorIs(t, err, model.ErrStorage)
	}

	// the aborted walks must not strand key-emitting goroutines
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}
