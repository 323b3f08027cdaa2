package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmitRunsOnLoopGoroutine(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopGoroutine := make(chan struct{}, 1)
	go func() {
		loopGoroutine <- struct{}{}
		l.Run(ctx)
	}()
	<-loopGoroutine

	var ran int32
	l.Submit(func() { atomic.AddInt32(&ran, 1) })
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestSubmitSerializesConcurrentCallers(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Submit(func() {
				current := counter
				current++
				counter = current
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestCallReturnsResult(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	result := Call(l, func() int { return 42 })
	assert.Equal(t, 42, result)
}

func TestRunExitsOnContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after cancel")
	}
}
