package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
)

var (
	ErrOpen            = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State is the position of a breaker.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker. Zero fields take the defaults.
type Settings struct {
	// Probes is the number of calls let through while half-open.
	Probes uint32
	// Interval clears the counts of a closed breaker.
	Interval time.Duration
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
	// Trip decides, after a failure, whether a closed breaker opens.
	Trip func(Counts) bool
	// OnStateChange observes transitions.
	OnStateChange func(name string, from, to State)
}

// DefaultSettings trips after five consecutive failures and probes again
// after thirty seconds.
func DefaultSettings() Settings {
	return Settings{
		Probes:   1,
		Interval: time.Minute,
		Cooldown: 30 * time.Second,
		Trip:     func(c Counts) bool { return c.ConsecutiveFailures >= 5 },
	}
}

// Counts are the call statistics of the current generation.
type Counts struct {
	Requests             uint32
	Successes            uint32
	Failures             uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker stops calling a failing action handler for a cooldown period.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	counts     Counts
	expiry     time.Time
	generation uint64
}

// New creates a closed breaker.
func New(name string, settings Settings) *Breaker {
	d := DefaultSettings()
	if settings.Probes == 0 {
		settings.Probes = d.Probes
	}
	if settings.Interval == 0 {
		settings.Interval = d.Interval
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = d.Cooldown
	}
	if settings.Trip == nil {
		settings.Trip = d.Trip
	}
	b := &Breaker{name: name, settings: settings, now: time.Now}
	b.expiry = b.now().Add(settings.Interval)
	return b
}

func (b *Breaker) Name() string { return b.name }

// State returns the state as of now.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.now())
	return b.state
}

// Counts returns a copy of the current counts.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn unless the breaker rejects the call. A panic in fn counts as a
// failure and is re-raised.
func (b *Breaker) Do(fn func() error) error {
	gen, err := b.before()
	if err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	ok := false
	defer func() { b.after(gen, ok) }()
	err = fn()
	ok = err == nil
	return err
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	switch {
	case b.state == StateOpen:
		return b.generation, ErrOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.settings.Probes:
		return b.generation, ErrTooManyRequests
	}
	b.counts.Requests++
	return b.generation, nil
}

func (b *Breaker) after(gen uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.advance(now)
	if gen != b.generation {
		return
	}
	if ok {
		b.counts.Successes++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.Probes {
			b.transition(StateClosed, now)
		}
		return
	}
	b.counts.Failures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	if b.state == StateHalfOpen || b.settings.Trip(b.counts) {
		b.transition(StateOpen, now)
	}
}

// advance applies the time based transitions.
func (b *Breaker) advance(now time.Time) {
	switch b.state {
	case StateClosed:
		if b.expiry.Before(now) {
			b.counts = Counts{}
			b.generation++
			b.expiry = now.Add(b.settings.Interval)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.transition(StateHalfOpen, now)
		}
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.counts = Counts{}
	b.generation++

	switch to {
	case StateClosed:
		b.expiry = now.Add(b.settings.Interval)
	case StateOpen:
		b.expiry = now.Add(b.settings.Cooldown)
	case StateHalfOpen:
		b.expiry = time.Time{}
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// Guard wraps an action handler in a breaker named after the binding.
func Guard(name string, h controller.Handler, settings Settings) (controller.Handler, *Breaker) {
	b := New(name, settings)
	return func(w *form.Widget, d *form.Data) error {
		return b.Do(func() error { return h(w, d) })
	}, b
}

// GuardAll wraps every handler of handlers, each with its own breaker.
func GuardAll(handlers map[string]controller.Handler, settings Settings) (map[string]controller.Handler, map[string]*Breaker) {
	guarded := make(map[string]controller.Handler, len(handlers))
	breakers := make(map[string]*Breaker, len(handlers))
	for name, h := range handlers {
		guarded[name], breakers[name] = Guard(name, h, settings)
	}
	return guarded, breakers
}
