package sim

import (
	"testing"
)

func customerIDs(cs []Customer) []int {
	ids := make([]int, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWaitingQueue_FIFO(t *testing.T) {
	// GIVEN a queue with customers [1, 2, 3]
	wq := NewWaitingQueue(3)
	for id := 1; id <= 3; id++ {
		if !wq.Enqueue(Customer{ID: id}) {
			t.Fatalf("Enqueue(%d) rejected with free chairs", id)
		}
	}

	// WHEN two customers are dequeued
	a, _ := wq.Dequeue()
	b, _ := wq.Dequeue()

	// THEN they leave in arrival order
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("Dequeue order: got %d, %d; want 1, 2", a.ID, b.ID)
	}
	if wq.Len() != 1 {
		t.Errorf("Len: got %d, want 1", wq.Len())
	}
}

func TestWaitingQueue_Enqueue_FullRejects(t *testing.T) {
	// GIVEN a queue with its only chair taken
	wq := NewWaitingQueue(1)
	wq.Enqueue(Customer{ID: 1})

	// WHEN another customer tries to sit
	ok := wq.Enqueue(Customer{ID: 2})

	// THEN they are rejected and the queue is unchanged
	if ok {
		t.Error("Enqueue on full queue: got true, want false")
	}
	if !intsEqual(customerIDs(wq.Items()), []int{1}) {
		t.Errorf("Items: got %v, want [1]", customerIDs(wq.Items()))
	}
	if !wq.IsFull() {
		t.Error("IsFull: got false, want true")
	}
}

func TestWaitingQueue_ZeroChairs_AlwaysFull(t *testing.T) {
	wq := NewWaitingQueue(0)
	if wq.Enqueue(Customer{ID: 1}) {
		t.Error("Enqueue with zero chairs: got true, want false")
	}
}

func TestWaitingQueue_EmptyDequeueAndPeek(t *testing.T) {
	wq := NewWaitingQueue(2)
	if _, ok := wq.Dequeue(); ok {
		t.Error("Dequeue on empty queue: got ok")
	}
	if _, ok := wq.Peek(); ok {
		t.Error("Peek on empty queue: got ok")
	}
}

func TestWaitingQueue_Peek_DoesNotRemove(t *testing.T) {
	wq := NewWaitingQueue(2)
	wq.Enqueue(Customer{ID: 5})

	c, ok := wq.Peek()

	if !ok || c.ID != 5 {
		t.Errorf("Peek: got %v, %v; want 5, true", c, ok)
	}
	if wq.Len() != 1 {
		t.Errorf("Peek modified queue length: got %d, want 1", wq.Len())
	}
}

func TestWaitingQueue_Resize_EvictsFromTail(t *testing.T) {
	// GIVEN four waiting customers
	wq := NewWaitingQueue(4)
	for id := 1; id <= 4; id++ {
		wq.Enqueue(Customer{ID: id})
	}

	// WHEN the row shrinks to two chairs
	evicted := wq.Resize(2)

	// THEN the two latest arrivals are returned and the head is kept
	if !intsEqual(customerIDs(evicted), []int{3, 4}) {
		t.Errorf("evicted: got %v, want [3 4]", customerIDs(evicted))
	}
	if !intsEqual(customerIDs(wq.Items()), []int{1, 2}) {
		t.Errorf("remaining: got %v, want [1 2]", customerIDs(wq.Items()))
	}
	if wq.Capacity() != 2 {
		t.Errorf("Capacity: got %d, want 2", wq.Capacity())
	}
}

func TestWaitingQueue_Resize_GrowKeepsEveryone(t *testing.T) {
	wq := NewWaitingQueue(1)
	wq.Enqueue(Customer{ID: 1})

	if evicted := wq.Resize(3); len(evicted) != 0 {
		t.Errorf("evicted on grow: got %v, want none", evicted)
	}
	if !wq.Enqueue(Customer{ID: 2}) {
		t.Error("Enqueue after grow: got false, want true")
	}
}

func TestWaitingQueue_NegativeCapacity_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewWaitingQueue(-1): expected panic")
		}
	}()
	NewWaitingQueue(-1)
}

func TestWaitingQueue_String(t *testing.T) {
	wq := NewWaitingQueue(3)
	wq.Enqueue(Customer{ID: 4})
	wq.Enqueue(Customer{ID: 9})

	if got := wq.String(); got != "[#4 #9]" {
		t.Errorf("String: got %q, want %q", got, "[#4 #9]")
	}
}
