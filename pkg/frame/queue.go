package frame

import (
	"sync"

	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
)

// Queue is the FIFO between the ingest loop (single producer) and the render
// tick (single consumer). The lock covers only the O(1) operation itself.
type Queue struct {
	mu     sync.Mutex
	frames []RawFrame
	head   int
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends frame to the tail and returns the new depth. It never blocks
// on the consumer.
func (q *Queue) Enqueue(frame RawFrame) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.frames = append(q.frames, frame)
	return len(q.frames) - q.head
}

// Dequeue removes and returns the oldest frame. It is a poll: on an empty
// queue it returns common.ErrEmptyQueue instead of waiting.
func (q *Queue) Dequeue() (RawFrame, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.frames) {
		return nil, common.ErrEmptyQueue
	}

	frame := q.frames[q.head]
	q.frames[q.head] = nil
	q.head++

	// compact once the consumed prefix dominates
	if q.head == len(q.frames) {
		q.frames = q.frames[:0]
		q.head = 0
	} else if q.head >= 64 && q.head*2 >= len(q.frames) {
		n := copy(q.frames, q.frames[q.head:])
		clear(q.frames[n:])
		q.frames = q.frames[:n]
		q.head = 0
	}

	return frame, nil
}

// Count returns the number of queued frames
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) - q.head
}

// Drain drops every queued frame and returns how many were dropped
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.frames) - q.head
	q.frames = nil
	q.head = 0
	return n
}
