package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// maxPendingStates bounds how far a slow stream client may fall behind.
// Older states are dropped first; the newest is always delivered.
const maxPendingStates = 64

// stateFeed buffers published states between an Orchestrator subscription and
// the goroutine writing them to a client.
type stateFeed struct {
	mu      sync.Mutex
	pending []weather.QueryState
	signal  chan struct{}
}

func newStateFeed() *stateFeed {
	return &stateFeed{signal: make(chan struct{}, 1)}
}

// publish never blocks, so it is safe to call from an Orchestrator subscription.
func (f *stateFeed) publish(s weather.QueryState) {
	f.mu.Lock()
	f.pending = append(f.pending, s)
	if len(f.pending) > maxPendingStates {
		f.pending = f.pending[len(f.pending)-maxPendingStates:]
	}
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// drain returns and clears the buffered states.
func (f *stateFeed) drain() []weather.QueryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

func writeStateEvent(w *bufio.Writer, s weather.QueryState) error {
	payload, err := json.Marshal(newStateView(s))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// streamState sends the session's state as server-sent events: the current state
// first, then one event per change, until the client goes away.
func (h *handler) streamState(c *fiber.Ctx) error {
	o := h.session(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	feed := newStateFeed()
	initial, unsubscribe := o.Watch(feed.publish)
	heartbeat := h.heartbeat
	logger := h.logger

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		if err := writeStateEvent(w, initial); err != nil {
			return
		}
		for {
			select {
			case <-feed.signal:
				for _, s := range feed.drain() {
					if err := writeStateEvent(w, s); err != nil {
						logger.Debug("state stream closed", zap.Error(err))
						return
					}
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("state stream closed", zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}
