// Package queue provides the unbounded FIFO holding area for one-shot tasks.
package queue

import (
	"sync"

	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

// Queue is an unbounded first-in-first-out queue of tasks, safe for
// concurrent use. The lock is only held for the push or pop itself.
type Queue struct {
	mu    sync.Mutex
	items []task.Task
	head  int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push appends t at the tail.
func (q *Queue) Push(t task.Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

// Pop removes and returns the task at the head.
// The second result is false when the queue is empty.
func (q *Queue) Pop() (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return nil, false
	}
	t := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return t, true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Drain pops and passes every task to run until the queue is empty,
// including tasks pushed by run itself. It returns how many tasks ran.
func (q *Queue) Drain(run func(task.Task)) int {
	n := 0
	for t, ok := q.Pop(); ok; t, ok = q.Pop() {
		run(t)
		n++
	}
	return n
}

// Clear discards all queued tasks and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items) - q.head
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return n
}
