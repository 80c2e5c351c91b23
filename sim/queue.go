// Implements the WaitingQueue, the row of chairs where customers wait for a free barber.
// Customers are enqueued on arrival when every barber is busy.

package sim

import (
	"fmt"
	"strings"
)

// WaitingQueue is a bounded FIFO queue of customers.
// Invariant: Len() <= Capacity() at all times.
type WaitingQueue struct {
	queue    []Customer // FIFO, head at index 0
	capacity int
}

// NewWaitingQueue creates an empty queue with the given number of chairs.
func NewWaitingQueue(capacity int) *WaitingQueue {
	if capacity < 0 {
		panic(fmt.Sprintf("NewWaitingQueue: negative capacity %d", capacity))
	}
	return &WaitingQueue{capacity: capacity}
}

// Enqueue seats c in the last free chair. It returns false, leaving the queue
// unchanged, when every chair is taken.
func (wq *WaitingQueue) Enqueue(c Customer) bool {
	if len(wq.queue) >= wq.capacity {
		return false
	}
	wq.queue = append(wq.queue, c)
	return true
}

// Dequeue removes the customer who has waited longest.
func (wq *WaitingQueue) Dequeue() (Customer, bool) {
	if len(wq.queue) == 0 {
		return Customer{}, false
	}
	c := wq.queue[0]
	wq.queue = wq.queue[1:]
	return c, true
}

// Peek returns the head of the queue without removing it.
func (wq *WaitingQueue) Peek() (Customer, bool) {
	if len(wq.queue) == 0 {
		return Customer{}, false
	}
	return wq.queue[0], true
}

// Len returns the number of waiting customers.
func (wq *WaitingQueue) Len() int {
	return len(wq.queue)
}

// Capacity returns the number of chairs.
func (wq *WaitingQueue) Capacity() int {
	return wq.capacity
}

// IsFull reports whether no chair is free.
func (wq *WaitingQueue) IsFull() bool {
	return len(wq.queue) >= wq.capacity
}

// Resize changes the number of chairs. Customers that no longer fit are
// removed from the tail and returned, latest arrival last.
func (wq *WaitingQueue) Resize(capacity int) []Customer {
	if capacity < 0 {
		panic(fmt.Sprintf("Resize: negative capacity %d", capacity))
	}
	wq.capacity = capacity
	if len(wq.queue) <= capacity {
		return nil
	}
	evicted := append([]Customer(nil), wq.queue[capacity:]...)
	wq.queue = wq.queue[:capacity]
	return evicted
}

// Clear empties every chair.
func (wq *WaitingQueue) Clear() {
	wq.queue = nil
}

// Items returns a copy of the waiting customers, head first.
func (wq *WaitingQueue) Items() []Customer {
	out := make([]Customer, len(wq.queue))
	copy(out, wq.queue)
	return out
}

func (wq *WaitingQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range wq.queue {
		sb.WriteString(fmt.Sprintf("#%d", c.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
