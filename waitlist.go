package csp

import "container/list"

// waitlist is the wait-list registry: an ordered sequence of pending
// notifiers keyed by a monotonically increasing wait-id, with O(1)
// removal by id. It is backed by a container/list doubly-linked list plus
// an id→element index, as the data model describes.
type waitlist[N any] struct {
	order *list.List
	index map[uint64]*list.Element
}

type waitEntry[N any] struct {
	id       uint64
	notifier N
}

func newWaitlist[N any]() *waitlist[N] {
	return &waitlist[N]{
		order: list.New(),
		index: make(map[uint64]*list.Element),
	}
}

func (w *waitlist[N]) Len() int { return w.order.Len() }

func (w *waitlist[N]) PushBack(id uint64, n N) {
	el := w.order.PushBack(waitEntry[N]{id: id, notifier: n})
	w.index[id] = el
}

// PopFront removes and returns the head entry, if any.
func (w *waitlist[N]) PopFront() (waitEntry[N], bool) {
	front := w.order.Front()
	if front == nil {
		var zero waitEntry[N]
		return zero, false
	}
	entry := front.Value.(waitEntry[N])
	w.order.Remove(front)
	delete(w.index, entry.id)
	return entry, true
}

// Remove deletes the entry named by id, if present. Reports whether it
// was found — a miss is the common case where the notifier already fired
// and removed itself.
func (w *waitlist[N]) Remove(id uint64) bool {
	el, ok := w.index[id]
	if !ok {
		return false
	}
	w.order.Remove(el)
	delete(w.index, id)
	return true
}

// DrainAll removes every entry and returns them in order, used by Close
// to notify every waiter of closure.
func (w *waitlist[N]) DrainAll() []N {
	out := make([]N, 0, w.order.Len())
	for el := w.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(waitEntry[N]).notifier)
	}
	w.order.Init()
	w.index = make(map[uint64]*list.Element)
	return out
}
