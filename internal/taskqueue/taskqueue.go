package taskqueue

import (
	"sync"

	"github.com/laittg/chainable/pkg/api"
)

// Task is a queued, argument-bound invocation awaiting its turn to run.
//
// Registered steps are enqueued by name and resolved against the
// registry when popped, so a Task created by a fluent call carries no
// function of its own. Ad-hoc tasks (Then) carry their function
// directly and are never registered.
type Task struct {
	// Name is the registered step name, or "then" for ad-hoc tasks.
	Name string

	// Seq is the task's position in enqueue order, starting at 0.
	Seq int

	// Args is the parameter list captured at call time.
	Args []any

	// Fn is set only for ad-hoc tasks; named tasks resolve through the
	// registry at execution time.
	Fn api.StepFunc
}

// Queue is a FIFO of pending tasks. It is safe for concurrent
// producers; only the executor pops.
type Queue struct {
	mu    sync.Mutex
	tasks []Task
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push appends a task to the back of the queue.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tasks = append(q.tasks, t)
}

// Pop removes and returns the front task. It reports false when the
// queue is empty.
func (q *Queue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return Task{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Clear discards every pending task and returns how many were dropped.
// The executor calls it when a task fails, so queued-but-not-started
// tasks never run after an error.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.tasks)
	q.tasks = nil
	return n
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
