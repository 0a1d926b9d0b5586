package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	id      string
	err     error
	counter *int64
	block   chan struct{}
}

func (t countingTask) ID() string { return t.id }

func (t countingTask) Execute(ctx context.Context) error {
	if t.block != nil {
		<-t.block
	}
	atomic.AddInt64(t.counter, 1)
	return t.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatcher_RunsEveryTask(t *testing.T) {
	d := NewDispatcher(3, 20, quietLogger())
	d.Run(context.Background())

	var count int64
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		task := countingTask{id: fmt.Sprintf("t%d", i), counter: &count}
		if i == 4 {
			task.err = boom
		}
		require.NoError(t, d.Submit(task))
	}

	results := d.Stop()
	assert.EqualValues(t, 10, atomic.LoadInt64(&count))
	require.Len(t, results, 10)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			assert.Equal(t, "t4", r.TaskID)
			assert.ErrorIs(t, r.Err, boom)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := NewDispatcher(1, 1, quietLogger())

	var count int64
	// Not running yet, so the single queue slot stays taken.
	require.NoError(t, d.Submit(countingTask{id: "a", counter: &count}))
	err := d.Submit(countingTask{id: "b", counter: &count})
	assert.ErrorIs(t, err, ErrQueueFull)

	d.Run(context.Background())
	d.Stop()
	assert.EqualValues(t, 1, atomic.LoadInt64(&count))
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d := NewDispatcher(2, 2, quietLogger())
	d.Run(context.Background())
	assert.Empty(t, d.Stop())
	assert.ErrorIs(t, d.Submit(countingTask{id: "late"}), ErrStopped)
	assert.Empty(t, d.Stop())
}

func TestDispatcher_StopWaitsForRunningTasks(t *testing.T) {
	d := NewDispatcher(2, 4, quietLogger())
	d.Run(context.Background())

	var count int64
	release := make(chan struct{})
	require.NoError(t, d.Submit(countingTask{id: "slow", counter: &count, block: release}))

	done := make(chan []Result)
	go func() { done <- d.Stop() }()
	close(release)

	results := <-done
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, atomic.LoadInt64(&count))
}
