package audio

import "sync/atomic"

// Queue hands raw PCM chunks from the capture callback to the pipeline loop.
// Push is safe for concurrent use with Drain; both may run on different
// goroutines. Dropped chunks are counted rather than blocking the audio
// callback.
type Queue struct {
	ch      chan []byte
	dropped atomic.Uint64
}

// NewQueue creates a Queue holding at most capacity pending chunks.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan []byte, capacity)}
}

// Push enqueues one chunk without blocking. A full queue drops the chunk and
// increments the dropped counter.
func (q *Queue) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	select {
	case q.ch <- chunk:
	default:
		q.dropped.Add(1)
	}
}

// Drain removes every currently buffered chunk and returns them concatenated
// in arrival order. It never blocks; an empty queue yields nil.
func (q *Queue) Drain() []byte {
	var buf []byte
	for {
		select {
		case chunk := <-q.ch:
			buf = append(buf, chunk...)
		default:
			return buf
		}
	}
}

// Len reports the number of pending chunks.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped reports how many chunks were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
