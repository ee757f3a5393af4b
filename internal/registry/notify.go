package registry

// Subscribe registers a listener for new snapshot ETags and returns its
// channel and an unsubscribe func. Slow listeners miss updates instead of
// blocking writers.
func (r *Registry) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	r.subsMu.Lock()
	r.subs[ch] = struct{}{}
	r.subsMu.Unlock()

	unsub := func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		if _, ok := r.subs[ch]; ok {
			delete(r.subs, ch)
			close(ch)
		}
	}
	return ch, unsub
}

// notify fans out an ETag to all listeners (non-blocking).
func (r *Registry) notify(etag string) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- etag:
		default:
		}
	}
}
