package viewfinder

// Subscribe returns a channel receiving the state after every change, and a
// func to stop receiving. Slow subscribers only see the newest state.
func (v *Viewfinder) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	ch <- v.State()

	v.subMu.Lock()
	v.subs[ch] = struct{}{}
	v.subMu.Unlock()

	return ch, func() {
		v.subMu.Lock()
		if _, ok := v.subs[ch]; ok {
			delete(v.subs, ch)
			close(ch)
		}
		v.subMu.Unlock()
	}
}

func (v *Viewfinder) publish() {
	state := v.State()

	v.subMu.Lock()
	defer v.subMu.Unlock()
	for ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
