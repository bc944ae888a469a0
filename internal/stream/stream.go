// Package stream subscribes to the backend's sync progress stream: a
// server-sent event source keyed by shop that yields JSON progress samples
// until the job completes at 100.
//
// The subscription normalizes the raw feed for UI consumption: malformed
// frames are discarded, displayed progress is monotonic, small advances are
// throttled away, and the terminal sample is always delivered.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrConnectionLost is delivered as the final event when the stream dies
// before the terminal sample and reconnecting failed. The job may still have
// completed server-side; callers should attempt a best-effort refresh.
var ErrConnectionLost = errors.New("sync stream connection lost")

// DefaultMinDelta is the minimum progress advance (in percentage points)
// required to emit a new sample. The terminal sample bypasses it.
const DefaultMinDelta = 2.0

const (
	defaultMaxReconnects = 3
	defaultReconnectWait = 500 * time.Millisecond
)

// Event is one normalized progress notification.
type Event struct {
	// Progress is the job completion percentage, clamped to [0,100].
	Progress float64
	// Terminal is set on the final successful sample (progress 100).
	Terminal bool
	// Err is set instead of a sample when the stream is lost for good.
	Err error
}

// Subscriber opens progress subscriptions against a backend.
type Subscriber struct {
	BaseURL string
	// HTTP must not carry a client timeout; the stream is long-lived.
	HTTP *http.Client
	// MinDelta suppresses emissions that advance less than this many
	// percentage points over the last emitted value.
	MinDelta float64
	// MaxReconnects bounds transparent reconnect attempts after a
	// transport failure before the stream is declared lost.
	MaxReconnects int
	// ReconnectWait is the initial backoff interval between reconnects.
	ReconnectWait time.Duration
}

// NewSubscriber creates a Subscriber with the default policy.
func NewSubscriber(baseURL string) *Subscriber {
	return &Subscriber{
		BaseURL:       baseURL,
		HTTP:          &http.Client{},
		MinDelta:      DefaultMinDelta,
		MaxReconnects: defaultMaxReconnects,
		ReconnectWait: defaultReconnectWait,
	}
}

// Subscription is a live progress stream handle. At most one should be held
// per action; open a new one only after closing the previous.
type Subscription struct {
	events    chan Event
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Events returns the event channel. It is closed after the terminal event,
// after an Err event, or once Close takes effect.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close cancels the subscription and releases the connection. It is
// idempotent and safe to call at any time, including after the channel has
// already closed.
func (s *Subscription) Close() {
	s.closeOnce.Do(s.cancel)
}

// Open starts a subscription for the shop. The returned handle owns a
// reader goroutine that lives until the terminal event, a fatal transport
// failure, or Close.
func (s *Subscriber) Open(ctx context.Context, shop string) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan Event, 8),
		cancel: cancel,
	}
	go s.run(ctx, shop, sub)
	return sub
}

func (s *Subscriber) run(ctx context.Context, shop string, sub *Subscription) {
	defer close(sub.events)

	bo := backoff.NewExponentialBackOff()
	if s.ReconnectWait > 0 {
		bo.InitialInterval = s.ReconnectWait
	} else {
		bo.InitialInterval = defaultReconnectWait
	}
	bo.MaxInterval = 10 * time.Second

	lastEmitted := -1.0
	attempts := 0

	for {
		err := s.consume(ctx, shop, sub, &lastEmitted)
		if err == nil {
			return // terminal sample delivered
		}
		if ctx.Err() != nil {
			return // cancelled by Close or parent context
		}

		attempts++
		if attempts > s.MaxReconnects {
			sub.emit(ctx, Event{Err: ErrConnectionLost})
			return
		}

		slog.Debug("sync stream: reconnecting", "shop", shop, "attempt", attempts, "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(bo.NextBackOff()):
		}
	}
}

// consume reads one connection's worth of frames. It returns nil once the
// terminal sample has been emitted, or an error describing why the
// connection ended early.
func (s *Subscriber) consume(ctx context.Context, shop string, sub *Subscription, lastEmitted *float64) error {
	params := url.Values{}
	params.Set("shop", shop)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/sync-stream?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "data:")
		if !ok {
			continue // event:/id: fields, comments, frame separators
		}

		var sample struct {
			Progress *float64 `json:"progress"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &sample); err != nil || sample.Progress == nil {
			slog.Debug("sync stream: discarding malformed frame", "shop", shop, "data", data, "err", err)
			continue
		}

		p := *sample.Progress
		if p < 0 {
			p = 0
		}
		if p >= 100 {
			sub.emit(ctx, Event{Progress: 100, Terminal: true})
			return nil
		}
		if p < *lastEmitted {
			continue // never step backwards
		}
		if *lastEmitted >= 0 && p-*lastEmitted < s.MinDelta {
			continue // below the throttle delta
		}
		if !sub.emit(ctx, Event{Progress: p}) {
			return ctx.Err()
		}
		*lastEmitted = p
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream closed before completion")
}

// emit delivers an event unless the subscription is cancelled first.
func (s *Subscription) emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
