package frame

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 200; i++ {
		depth := q.Enqueue(RawFrame{byte(i >> 8), byte(i)})
		assert.Equal(t, i+1, depth)
	}
	require.Equal(t, 200, q.Count())

	for i := 0; i < 200; i++ {
		f, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, RawFrame{byte(i >> 8), byte(i)}, f)
	}
	assert.Equal(t, 0, q.Count())
}

func TestQueueDequeueEmpty(t *testing.T) {
	q := NewQueue()

	f, err := q.Dequeue()
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, common.ErrEmptyQueue))

	q.Enqueue(RawFrame{1, 2})
	_, err = q.Dequeue()
	require.NoError(t, err)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, common.ErrEmptyQueue)
}

func TestQueueInterleaved(t *testing.T) {
	q := NewQueue()
	next := 0
	for round := 0; round < 50; round++ {
		for i := 0; i < 3; i++ {
			q.Enqueue(RawFrame{byte(round), byte(i)})
		}
		for i := 0; i < 2; i++ {
			f, err := q.Dequeue()
			require.NoError(t, err)
			assert.Equal(t, byte(next/3), f[0])
			assert.Equal(t, byte(next%3), f[1])
			next++
		}
	}
	assert.Equal(t, 50, q.Count())
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	q.Enqueue(RawFrame{1, 2})
	q.Enqueue(RawFrame{3, 4})

	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, 0, q.Count())
	assert.Equal(t, 0, q.Drain())
}

func TestQueueSingleProducerSingleConsumer(t *testing.T) {
	const n = 10000
	q := NewQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Enqueue(RawFrame{byte(i >> 8), byte(i)})
		}
	}()

	got := 0
	for got < n {
		if q.Count() == 0 {
			continue
		}
		f, err := q.Dequeue()
		require.NoError(t, err)
		require.Equal(t, RawFrame{byte(got >> 8), byte(got)}, f)
		got++
	}
	wg.Wait()
}
