package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueRunsEnqueuedJobs(t *testing.T) {
	done := make(chan job, 1)
	fn := func(ctx context.Context, personID uint, yymm string) error {
		done <- job{personID: personID, yymm: yymm}
		return nil
	}
	q := NewQueue(discardLogger(), fn, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, q.Run(ctx))
	}()

	q.Enqueue(7, "202401")

	select {
	case got := <-done:
		assert.Equal(t, job{personID: 7, yymm: "202401"}, got)
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}

	cancel()
	wg.Wait()
}

func TestEnqueueNeverBlocksWhenFull(t *testing.T) {
	fn := func(ctx context.Context, personID uint, yymm string) error { return nil }
	q := NewQueue(discardLogger(), fn, 1)

	finished := make(chan struct{})
	go func() {
		q.Enqueue(1, "202401")
		q.Enqueue(1, "202402") // queue full, must drop instead of blocking
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

type mockEnabler struct {
	mock.Mock
}

func (m *mockEnabler) EnableMonth(ctx context.Context, personID uint, yymm string) error {
	return m.Called(ctx, personID, yymm).Error(0)
}

func TestRefreshDelegatesToStore(t *testing.T) {
	store := new(mockEnabler)
	store.On("EnableMonth", mock.Anything, uint(3), "202402").Return(nil)

	fn := Refresh(store)
	require.NoError(t, fn(context.Background(), 3, "202402"))
	store.AssertExpectations(t)
}
