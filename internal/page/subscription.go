package page

import "sync"

// Subscription is the handle of one attached listener.
type Subscription struct {
	doc  *Document
	key  listenerKey
	id   uint64
	once sync.Once
}

// Cancel detaches the listener. Only the first call has an effect.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.doc.detach(s.key, s.id) })
}

// Scope collects the subscriptions acquired while one view is active and
// releases them together, along with any cleanup registered by the view.
type Scope struct {
	mu       sync.Mutex
	subs     []*Subscription
	cleanups []func()
}

func NewScope() *Scope { return &Scope{} }

// Add records sub and returns it.
func (s *Scope) Add(sub *Subscription) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return sub
}

// OnClose registers fn to run when the scope is closed, after its
// subscriptions are cancelled. Cleanups run in reverse registration order.
func (s *Scope) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Len returns the number of held subscriptions.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close cancels every held subscription. A closed scope is empty and may be
// closed again.
func (s *Scope) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	subs, cleanups := s.subs, s.cleanups
	s.subs, s.cleanups = nil, nil
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
