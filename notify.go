package guard

// StateChange describes a single transition between states.
type StateChange struct {
	Name string
	From State
	To   State
}

// subscriberBuffer bounds how far a slow subscriber can lag before
// events are dropped.
const subscriberBuffer = 16

// Subscribe registers a channel that receives one StateChange per actual
// transition. Dispatch never blocks the guard: a subscriber that falls
// more than subscriberBuffer events behind misses the overflow. There is
// no unsubscribe; a Guard lives as long as the dependency it protects.
func (g *Guard) Subscribe() <-chan StateChange {
	ch := make(chan StateChange, subscriberBuffer)
	g.subMu.Lock()
	g.subs = append(g.subs, ch)
	g.subMu.Unlock()
	return ch
}

func (g *Guard) publish(sc StateChange) {
	g.subMu.Lock()
	defer g.subMu.Unlock()
	for _, ch := range g.subs {
		select {
		case ch <- sc:
		default:
		}
	}
}
