package weather

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Orchestrator runs lookups (Resolver, then Fetcher, then ValidateWeather) and owns
// the resulting QueryState. State is only written by FetchWeather.
type Orchestrator struct {
	resolver Resolver
	fetcher  Fetcher
	logger   *zap.Logger

	// notifyMu serializes state changes with their notifications so observers
	// see them in order. It is always taken before mu.
	notifyMu sync.Mutex

	mu      sync.Mutex
	state   QueryState
	gen     uint64
	subs    map[int]func(QueryState)
	nextSub int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used to report failed lookups.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an Orchestrator in the idle state.
func NewOrchestrator(resolver Resolver, fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		subs:     make(map[int]func(QueryState)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() QueryState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers fn to be called after every state change. Calls are
// synchronous and ordered; fn may read State but must not call FetchWeather.
func (o *Orchestrator) Subscribe(fn func(QueryState)) (unsubscribe func()) {
	_, unsubscribe = o.Watch(fn)
	return unsubscribe
}

// Watch is Subscribe that also returns the state fn's first call will follow.
// Every change after current reaches fn exactly once and none before it does.
func (o *Orchestrator) Watch(fn func(QueryState)) (current QueryState, unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	current = o.state
	o.mu.Unlock()

	var once sync.Once
	return current, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// FetchWeather runs one lookup for in and returns the terminal state.
//
// An incomplete input returns an *InputError and leaves state untouched. Otherwise
// Loading is raised before any remote call and always cleared on return. A location
// that does not geocode is reported through NotFound with a nil error; transport and
// schema failures are recorded in Failure and also returned.
func (o *Orchestrator) FetchWeather(ctx context.Context, in SearchInput) (state QueryState, err error) {
	if err := in.Validate(); err != nil {
		return o.State(), err
	}
	in = in.Normalize()

	gen := o.start()

	var outcome QueryState
	defer func() {
		state = o.finish(gen, outcome)
	}()

	log := o.logger.With(zap.String("city", in.City), zap.String("country", in.Country))

	coords, err := o.resolver.Resolve(ctx, in.City, in.Country)
	if errors.Is(err, ErrLocationNotFound) {
		log.Info("location not found")
		outcome.NotFound = true
		return state, nil
	}
	if err != nil {
		log.Error("geocoding failed", zap.Error(err))
		outcome.Failure = &Failure{Kind: FailureTransport, Message: err.Error()}
		return state, err
	}

	raw, err := o.fetcher.Fetch(ctx, coords)
	if err != nil {
		log.Error("weather fetch failed", zap.Error(err),
			zap.Float64("lat", coords.Latitude), zap.Float64("lon", coords.Longitude))
		outcome.Failure = &Failure{Kind: FailureTransport, Message: err.Error()}
		return state, err
	}

	result, err := ValidateWeather(raw)
	if err != nil {
		log.Warn("weather response rejected", zap.Error(err))
		outcome.Failure = &Failure{Kind: FailureInvalidResponse, Message: err.Error()}
		return state, err
	}

	log.Debug("weather resolved", zap.String("name", result.Name))
	outcome.Result = result
	return state, nil
}

// start resets the state for a new query and returns its generation.
func (o *Orchestrator) start() uint64 {
	var gen uint64
	o.update(func(s *QueryState) bool {
		o.gen++
		gen = o.gen
		*s = QueryState{Loading: true}
		return true
	})
	return gen
}

// finish writes the terminal state unless a newer query has started since gen.
func (o *Orchestrator) finish(gen uint64, outcome QueryState) QueryState {
	outcome.Loading = false
	o.update(func(s *QueryState) bool {
		if gen != o.gen {
			return false
		}
		*s = outcome
		return true
	})
	return outcome
}

// update applies fn under the state lock and notifies subscribers if fn reports a change.
func (o *Orchestrator) update(fn func(*QueryState) bool) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	changed := fn(&o.state)
	snapshot := o.state
	subs := make([]func(QueryState), 0, len(o.subs))
	for id := 0; id < o.nextSub; id++ {
		if sub, ok := o.subs[id]; ok {
			subs = append(subs, sub)
		}
	}
	o.mu.Unlock()

	if !changed {
		return
	}
	for _, sub := range subs {
		sub(snapshot)
	}
}
