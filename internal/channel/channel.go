// Package channel maintains the single shared websocket connection to the
// telemetry server. All streams in the process share one connection; each
// subscriber receives the connection lifecycle events plus the events of the
// one stream it registered for.
package channel

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"subzero-monitor/telemetry/internal/metrics"
)

type Kind int

const (
	KindConnected Kind = iota
	KindDisconnected
	KindSnapshot
	KindReading
)

// SnapshotPayload is the server's initial state for one stream, delivered
// once after subscribing so late joiners do not start from an empty history.
type SnapshotPayload struct {
	History            []json.RawMessage `json:"history"`
	LastDataReceivedAt string            `json:"last_data_received_at"`
}

type Event struct {
	Kind     Kind
	Data     json.RawMessage
	Snapshot *SnapshotPayload
}

type envelope struct {
	Stream string          `json:"stream"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

const (
	subscriptionBuffer = 64
	initialBackoff     = time.Second
	maxBackoff         = 30 * time.Second
)

type Channel struct {
	endpoint string
	apiKey   string
	log      zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	subs      map[string]map[*Subscription]struct{}
	connected bool

	done      chan struct{}
	closeOnce sync.Once
}

var (
	sharedMu sync.Mutex
	shared   *Channel
)

// Connect returns the process-wide channel, dialing it on first use.
// Repeated calls return the same instance without reconnecting; arguments
// after the first call are ignored.
func Connect(endpoint, apiKey string, log zerolog.Logger) *Channel {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = New(endpoint, apiKey, log)
		go shared.run()
	}
	return shared
}

// New creates an unconnected channel. Most callers want Connect.
func New(endpoint, apiKey string, log zerolog.Logger) *Channel {
	return &Channel{
		endpoint: endpoint,
		apiKey:   apiKey,
		log:      log.With().Str("component", "channel").Logger(),
		subs:     make(map[string]map[*Subscription]struct{}),
		done:     make(chan struct{}),
	}
}

// Subscribe registers for one stream's events. The returned subscription
// must be closed when the consumer goes away; every Subscribe needs a
// matching Close or handlers pile up across remounts.
func (c *Channel) Subscribe(stream string) *Subscription {
	sub := &Subscription{
		events: make(chan Event, subscriptionBuffer),
		stream: stream,
		ch:     c,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs[stream] == nil {
		c.subs[stream] = make(map[*Subscription]struct{})
	}
	c.subs[stream][sub] = struct{}{}

	// Late subscribers still learn the current transport state.
	if c.connected {
		sub.deliver(Event{Kind: KindConnected})
	}

	return sub
}

// Close stops the channel permanently and drops the connection.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

func (c *Channel) run() {
	backoff := initialBackoff
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, resp, err := websocket.DefaultDialer.Dial(c.endpoint, c.header())
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			c.log.Warn().Err(err).Str("endpoint", c.endpoint).Int("status", status).
				Dur("retry_in", backoff).Msg("dial failed")
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialBackoff

		c.setConnected(conn)
		c.log.Info().Str("endpoint", c.endpoint).Msg("connected")

		c.readLoop(conn)

		c.setDisconnected()
		conn.Close()

		select {
		case <-c.done:
			return
		default:
			c.log.Warn().Msg("connection lost, reconnecting")
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		metrics.MessagesReceived.Add(1)
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env envelope) {
	var ev Event
	switch env.Event {
	case "snapshot":
		var p SnapshotPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			metrics.DecodeFailures.Add(1)
			c.log.Warn().Err(err).Str("stream", env.Stream).Msg("bad snapshot payload")
			return
		}
		ev = Event{Kind: KindSnapshot, Snapshot: &p}
	case "reading":
		ev = Event{Kind: KindReading, Data: env.Data}
	default:
		c.log.Debug().Str("stream", env.Stream).Str("event", env.Event).Msg("unknown event")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for sub := range c.subs[env.Stream] {
		sub.deliver(ev)
	}
}

func (c *Channel) setConnected(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.connected = true
	c.broadcastLocked(Event{Kind: KindConnected})
}

func (c *Channel) setDisconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = nil
	c.connected = false
	c.broadcastLocked(Event{Kind: KindDisconnected})
}

func (c *Channel) broadcastLocked(ev Event) {
	for _, subs := range c.subs {
		for sub := range subs {
			sub.deliver(ev)
		}
	}
}

func (c *Channel) unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if subs := c.subs[sub.stream]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(c.subs, sub.stream)
		}
	}
}

func (c *Channel) header() http.Header {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set("X-API-Key", c.apiKey)
	}
	return h
}

type Subscription struct {
	events chan Event
	stream string
	ch     *Channel
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event { return s.events }

// Close detaches the subscription. No events are delivered after Close
// returns; the events channel is closed so pending readers drain and stop.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.ch != nil {
			s.ch.unsubscribe(s)
		}
		close(s.events)
	})
}

// deliver never blocks the read loop; a consumer that cannot keep up loses
// events and the drop is counted.
func (s *Subscription) deliver(ev Event) {
	select {
	case s.events <- ev:
	default:
		metrics.EventDrops.Add(1)
	}
}
