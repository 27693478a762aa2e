// File: internal/auth/notifier.go
package auth

import (
	"sort"
	"sync"
)

// notifier is the observer registry behind OnAuthStateChange. Callbacks run
// synchronously on the goroutine that triggered the transition, in
// subscription order.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func newNotifier() *notifier {
	return &notifier{subs: map[int]func(Event){}}
}

func (n *notifier) subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	ids := make([]int, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	// Callbacks run outside the lock so an observer may unsubscribe itself.
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
