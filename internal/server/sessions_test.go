package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/editor"
)

func newTestRegistry(idle time.Duration) *Registry {
	return NewRegistry(func(string) (*editor.Editor, error) {
		cfg := editor.DefaultConfig()
		cfg.Width, cfg.Height = 50, 50
		cfg.Logger = discardLogger()
		return editor.New(cfg)
	}, idle, discardLogger())
}

func TestRegistryCreateGetDelete(t *testing.T) {
	reg := newTestRegistry(0)

	id, ed, err := reg.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, ed, got)

	require.NoError(t, reg.Delete(id))
	assert.True(t, ed.State().Closed)
	_, err = ed.AddShape("circle")
	assert.ErrorIs(t, err, canvas.ErrClosed)

	_, err = reg.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Delete(id), ErrSessionNotFound)
}

func TestRegistryCreateError(t *testing.T) {
	reg := NewRegistry(func(string) (*editor.Editor, error) {
		return nil, errors.New("no surface")
	}, 0, discardLogger())

	_, _, err := reg.Create()
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistryReapsIdleSessions(t *testing.T) {
	reg := newTestRegistry(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	stale, staleEd, err := reg.Create()
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	fresh, _, err := reg.Create()
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, reg.Reap())
	assert.Equal(t, 1, reg.Len())
	assert.True(t, staleEd.State().Closed)

	_, err = reg.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = reg.Get(fresh)
	assert.NoError(t, err)
}

func TestRegistryGetKeepsSessionAlive(t *testing.T) {
	reg := newTestRegistry(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	id, _, err := reg.Create()
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	_, err = reg.Get(id)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	assert.Zero(t, reg.Reap())
}

func TestRegistryWithoutIdleTimeoutNeverReaps(t *testing.T) {
	reg := newTestRegistry(0)
	_, _, err := reg.Create()
	require.NoError(t, err)

	assert.Zero(t, reg.Reap())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reg.Run(ctx)
	assert.Equal(t, 1, reg.Len())
	reg.CloseAll()
}

func TestRegistryCloseAll(t *testing.T) {
	reg := newTestRegistry(0)
	_, a, err := reg.Create()
	require.NoError(t, err)
	_, b, err := reg.Create()
	require.NoError(t, err)

	reg.CloseAll()

	assert.Zero(t, reg.Len())
	assert.True(t, a.State().Closed)
	assert.True(t, b.State().Closed)
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	reg := newTestRegistry(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
