package taskqueue

import (
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := New()

	for i := 0; i < 3; i++ {
		q.Push(Task{Name: "step", Seq: i})
	}

	if q.Len() != 3 {
		t.Fatalf("expected 3 pending tasks, got %d", q.Len())
	}

	for i := 0; i < 3; i++ {
		task, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d failed", i)
		}
		if task.Seq != i {
			t.Fatalf("expected seq %d, got %d", i, task.Seq)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue should report false")
	}
}

func TestQueueClearDiscardsPending(t *testing.T) {
	q := New()

	q.Push(Task{Seq: 0})
	q.Push(Task{Seq: 1})

	if dropped := q.Clear(); dropped != 2 {
		t.Fatalf("expected 2 dropped tasks, got %d", dropped)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not empty after Clear: %d", q.Len())
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop after Clear should report false")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := New()

	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(Task{Name: "step"})
			}
		}()
	}
	wg.Wait()

	if q.Len() != producers*perProducer {
		t.Fatalf("expected %d tasks, got %d", producers*perProducer, q.Len())
	}
}
