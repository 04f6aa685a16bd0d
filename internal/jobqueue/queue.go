// Package jobqueue is the FIFO of pending lastz invocations shared by the
// worker pool.
package jobqueue

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"lastzrun/internal/lastz"
)

// Queue is safe for concurrent Pop. It is normally loaded once, before
// any worker starts.
type Queue struct {
	mu sync.Mutex
	q  *linkedlistqueue.Queue
}

// New returns a queue pre-loaded with cmds in order.
func New(cmds ...lastz.JobCommand) *Queue {
	q := &Queue{q: linkedlistqueue.New()}
	q.Push(cmds...)
	return q
}

// Push appends cmds in order.
func (q *Queue) Push(cmds ...lastz.JobCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range cmds {
		q.q.Enqueue(c)
	}
}

// Pop removes the oldest command. ok is false once the queue is empty.
func (q *Queue) Pop() (cmd lastz.JobCommand, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.q.Dequeue()
	if !ok {
		return lastz.JobCommand{}, false
	}
	return v.(lastz.JobCommand), true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.Size()
}
