package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

const (
	heartbeatInterval = 30 * time.Second
	joinTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Second
	realtimeVersion   = "1.0.0"
	defaultSchema     = "public"
)

// Phoenix channel events used by Supabase Realtime
const (
	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"
)

// outbound is a message sent to the Realtime server
type outbound struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref"`
}

// inbound is a message pushed by the Realtime server
type inbound struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
}

type replyPayload struct {
	Status   string `json:"status"`
	Response struct {
		Reason string `json:"reason"`
	} `json:"response"`
}

type changesPayload struct {
	Data struct {
		Type            domain.ChangeType `json:"type"`
		Schema          string            `json:"schema"`
		Table           string            `json:"table"`
		CommitTimestamp string            `json:"commit_timestamp"`
		Record          domain.Record     `json:"record"`
		OldRecord       domain.Record     `json:"old_record"`
	} `json:"data"`
}

type changeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// subscription is one channel on its own websocket
type subscription struct {
	id       string
	topic    string
	conn     *websocket.Conn
	callback func(domain.ChangeEvent)
	logger   *slog.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
	once    sync.Once
	onClose func()
}

// Subscribe opens a Realtime channel for table and delivers committed row
// changes to callback on a dedicated goroutine. The returned function stops
// delivery; a callback already running may still complete.
func (a *Adapter) Subscribe(ctx context.Context, table string, callback func(domain.ChangeEvent), opts domain.SubscribeOptions) (func(), error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%w: table name is empty", domain.ErrMalformedQuery)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: callback is required", domain.ErrInvalidInput)
	}

	schema := opts.Schema
	if schema == "" {
		schema = defaultSchema
	}
	event := opts.Event
	if event == "" {
		event = domain.ChangeAll
	}
	filter := changeFilter{Event: string(event), Schema: schema, Table: table}
	if opts.Filter != nil {
		if !opts.Filter.Op.IsValid() || opts.Filter.Field == "" {
			return nil, fmt.Errorf("%w: invalid subscription filter", domain.ErrMalformedQuery)
		}
		filter.Filter = opts.Filter.Field + "=" + filterValue(opts.Filter.Op, opts.Filter.Value)
	}

	wsURL, err := a.realtimeURL()
	if err != nil {
		return nil, err
	}

	dialer := &websocket.Dialer{HandshakeTimeout: joinTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w: %v", table, domain.ErrServiceUnavailable, err)
	}

	s := &subscription{
		id:       uuid.NewString(),
		topic:    "realtime:" + schema + ":" + table,
		conn:     conn,
		callback: callback,
		logger:   a.logger.With("table", table),
		done:     make(chan struct{}),
	}

	accessToken := a.userToken(ctx)
	if accessToken == "" {
		accessToken = a.anonKey
	}
	join := map[string]any{
		"config": map[string]any{
			"broadcast":        map[string]any{"self": false},
			"presence":         map[string]any{"key": ""},
			"postgres_changes": []changeFilter{filter},
		},
		"access_token": accessToken,
	}
	if err := s.join(ctx, join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	a.subsMu.Lock()
	a.subs[s.id] = s
	a.subsMu.Unlock()
	s.onClose = func() {
		a.subsMu.Lock()
		delete(a.subs, s.id)
		a.subsMu.Unlock()
	}

	go s.readLoop()
	go s.heartbeatLoop()

	s.logger.Debug("realtime subscription started", "topic", s.topic, "event", event)
	return s.unsubscribe, nil
}

func (a *Adapter) realtimeURL() (string, error) {
	u, err := url.Parse(a.url + realtimePath)
	if err != nil {
		return "", fmt.Errorf("%w: invalid realtime url: %v", domain.ErrInvalidInput, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"apikey": {a.anonKey}, "vsn": {realtimeVersion}}.Encode()
	return u.String(), nil
}

// join sends phx_join and waits for the matching reply
func (s *subscription) join(ctx context.Context, payload any) error {
	ref := uuid.NewString()
	if err := s.write(eventJoin, payload, ref); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	deadline := time.Now().Add(joinTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetReadDeadline(deadline)
	defer s.conn.SetReadDeadline(time.Time{})

	for {
		var msg inbound
		if err := s.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("%w: waiting for join reply: %v", domain.ErrServiceUnavailable, err)
		}
		if msg.Event != eventReply || msg.Ref == nil || *msg.Ref != ref {
			continue
		}

		var reply replyPayload
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			return fmt.Errorf("parse join reply: %w", err)
		}
		if reply.Status != "ok" {
			return fmt.Errorf("join rejected: %s", firstNonEmpty(reply.Response.Reason, reply.Status))
		}
		return nil
	}
}

func (s *subscription) write(event string, payload any, ref string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	topic := s.topic
	if event == eventHeartbeat {
		topic = "phoenix"
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(outbound{Topic: topic, Event: event, Payload: payload, Ref: ref})
}

func (s *subscription) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.logger.Warn("realtime connection lost", "topic", s.topic, "error", err)
			}
			s.shutdown(false)
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("ignoring malformed realtime message", "error", err)
			continue
		}

		switch msg.Event {
		case eventChanges:
			ev, err := decodeChange(msg.Payload)
			if err != nil {
				s.logger.Debug("ignoring malformed change event", "error", err)
				continue
			}
			if s.closed.Load() {
				return
			}
			s.callback(ev)
		case eventError, eventClose:
			if msg.Topic == s.topic {
				s.logger.Warn("realtime channel closed by server", "topic", s.topic, "event", msg.Event)
				s.shutdown(false)
				return
			}
		}
	}
}

func (s *subscription) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.write(eventHeartbeat, map[string]any{}, uuid.NewString()); err != nil {
				s.shutdown(false)
				return
			}
		}
	}
}

func (s *subscription) unsubscribe() {
	s.shutdown(true)
}

// shutdown stops delivery and closes the socket; leave sends phx_leave first
func (s *subscription) shutdown(leave bool) {
	s.once.Do(func() {
		s.closed.Store(true)
		if leave {
			_ = s.write(eventLeave, map[string]any{}, uuid.NewString())
			s.writeMu.Lock()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			s.writeMu.Unlock()
		}
		s.conn.Close()
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
		s.logger.Debug("realtime subscription stopped", "topic", s.topic)
	})
}

func decodeChange(payload json.RawMessage) (domain.ChangeEvent, error) {
	var p changesPayload
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return domain.ChangeEvent{}, err
	}

	ev := domain.ChangeEvent{
		Type:      p.Data.Type,
		Schema:    p.Data.Schema,
		Table:     p.Data.Table,
		Record:    p.Data.Record,
		OldRecord: p.Data.OldRecord,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Data.CommitTimestamp); err == nil {
		ev.CommitTimestamp = ts
	}
	return ev, nil
}
