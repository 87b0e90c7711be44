package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/pkg/messaging"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

func counter() (*atomic.Int64, LoadFunc[int64]) {
	var n atomic.Int64
	return &n, func(context.Context) int64 { return n.Add(1) }
}

func TestPoller_SnapshotLoadsLazily(t *testing.T) {
	n, load := counter()
	p := NewPoller(load, time.Hour, testutil.NewTestLogger())

	v, at := p.Snapshot(context.Background())
	assert.Equal(t, int64(1), v)
	assert.False(t, at.IsZero())

	v, _ = p.Snapshot(context.Background())
	assert.Equal(t, int64(1), v)
	assert.Equal(t, int64(1), n.Load())
}

func TestPoller_RefreshTriggersReload(t *testing.T) {
	n, load := counter()
	p := NewPoller(load, time.Hour, testutil.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	testutil.RequireEventually(t, func() bool { return n.Load() >= 1 }, time.Second, 10*time.Millisecond, "initial load")

	p.Refresh()
	testutil.RequireEventually(t, func() bool {
		v, _ := p.Snapshot(ctx)
		return v >= 2
	}, time.Second, 10*time.Millisecond, "refresh reload")
}

func TestPoller_TickerReloads(t *testing.T) {
	n, load := counter()
	p := NewPoller(load, 20*time.Millisecond, testutil.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	testutil.RequireEventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, 10*time.Millisecond, "periodic reload")
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	_, load := counter()
	p := NewPoller(load, 0, testutil.NewTestLogger())
	assert.Equal(t, DefaultPollInterval, p.interval)
}

type refreshCount struct{ n int }

func (r *refreshCount) Refresh() { r.n++ }

func TestChangeHandler_HandleEvent(t *testing.T) {
	a, b := &refreshCount{}, &refreshCount{}
	h := NewChangeHandler(testutil.NewTestLogger(), a, b)

	event, err := messaging.NewEvent(messaging.EventCollectionChanged, "hr-service", "", messaging.CollectionChangedEvent{
		Collection: "employees",
		Version:    4,
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)

	bad := &messaging.Event{Type: messaging.EventCollectionChanged, Data: []byte(`"oops"`)}
	assert.Error(t, h.HandleEvent(context.Background(), bad))
	assert.Equal(t, 1, a.n)
}
