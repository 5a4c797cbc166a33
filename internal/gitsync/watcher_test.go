package gitsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	pushes atomic.Int32
	err    error
}

func (f *fakePusher) Push(context.Context) (bool, error) {
	f.pushes.Add(1)
	return f.err == nil, f.err
}

func TestWatcher_PushesOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"applied":{}}`), 0644))

	pusher := &fakePusher{}
	w := NewWatcher(pusher, path, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	//unchanged file: no pushes
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), pusher.pushes.Load())

	require.NoError(t, os.WriteFile(path, []byte(`{"applied":{"abc":{}}}`), 0644))
	assert.Eventually(t, func() bool {
		return pusher.pushes.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatcher_RetriesAfterFailedPush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`a`), 0644))

	pusher := &fakePusher{err: errors.New("remote unreachable")}
	w := NewWatcher(pusher, path, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	defer cancel()

	//let the watcher record the initial hash before mutating
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`b`), 0644))

	//the failed hash is not recorded, so every tick retries
	assert.Eventually(t, func() bool {
		return pusher.pushes.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}
