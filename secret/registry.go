// File: secret/registry.go

package secret

import "sync/atomic"

// Registry tracks live secrets so they can be destroyed together, for
// example on process shutdown. A registered secret stays reachable until it
// is erased, so its finalizer does not run while a registry holds it.
type Registry interface {
	Register(s *Secret)
	Unregister(s *Secret)
}

// EventKind classifies lifecycle events.
type EventKind uint8

const (
	EventAllocated EventKind = iota
	EventAccessed
	EventErased
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventAllocated:
		return "allocated"
	case EventAccessed:
		return "accessed"
	case EventErased:
		return "erased"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes a lifecycle step of a secret. It never carries content.
type Event struct {
	Kind    EventKind
	Op      string
	Variant string
	Size    int
	Mode    State
	Err     error
}

// Observer receives lifecycle events. Implementations must be safe for
// concurrent use and must not call back into the secret.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

type multiObserver []Observer

func (m multiObserver) Observe(ev Event) {
	for _, o := range m {
		o.Observe(ev)
	}
}

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

type registryHolder struct{ r Registry }

type observerHolder struct{ o Observer }

var (
	globalRegistry atomic.Pointer[registryHolder]
	globalObserver atomic.Pointer[observerHolder]
)

// SetRegistry installs the process-wide registry. nil removes it. Secrets
// constructed earlier are not registered retroactively.
func SetRegistry(r Registry) {
	if r == nil {
		globalRegistry.Store(nil)
		return
	}
	globalRegistry.Store(&registryHolder{r: r})
}

// SetObserver installs the process-wide observer. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		globalObserver.Store(nil)
		return
	}
	globalObserver.Store(&observerHolder{o: o})
}

func register(s *Secret) {
	if h := globalRegistry.Load(); h != nil {
		h.r.Register(s)
	}
}

func unregister(s *Secret) {
	if h := globalRegistry.Load(); h != nil {
		h.r.Unregister(s)
	}
}

func emit(ev Event) {
	if h := globalObserver.Load(); h != nil {
		h.o.Observe(ev)
	}
}
