package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/view"
	"codecrafter-quiz/internal/visits"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionRegistry tracks the runtimes of open connections.
type SessionRegistry interface {
	Add(rt *app.Runtime)
	Get(id string) (*app.Runtime, error)
	Touch(id string)
	Remove(id string)
	Len() int
}

// TrackerFactory binds analytics to one anonymous visitor.
type TrackerFactory func(clientID string) app.Tracker

type PlayOption func(*PlayHandler)

func WithVisits(svc *visits.Service) PlayOption {
	return func(h *PlayHandler) { h.visits = svc }
}

func WithTrackers(f TrackerFactory) PlayOption {
	return func(h *PlayHandler) { h.trackers = f }
}

// WithInitialToken namespaces the fresh visitor ids minted for clients that
// send no userId.
func WithInitialToken(token string) PlayOption {
	return func(h *PlayHandler) { h.initialToken = token }
}

func WithLogger(log zerolog.Logger) PlayOption {
	return func(h *PlayHandler) { h.log = log }
}

func WithRuntimeOptions(opts ...app.RuntimeOption) PlayOption {
	return func(h *PlayHandler) { h.runtimeOpts = append(h.runtimeOpts, opts...) }
}

func WithClock(now func() time.Time) PlayOption {
	return func(h *PlayHandler) { h.now = now }
}

// PlayHandler runs one quiz session per websocket connection and pushes a
// fresh view after every state change.
type PlayHandler struct {
	catalog      app.Catalog
	sessions     SessionRegistry
	visits       *visits.Service
	trackers     TrackerFactory
	initialToken string
	log          zerolog.Logger
	now          func() time.Time
	runtimeOpts  []app.RuntimeOption
	upgrader     websocket.Upgrader
}

func NewPlayHandler(catalog app.Catalog, sessions SessionRegistry, opts ...PlayOption) *PlayHandler {
	h := &PlayHandler{
		catalog:  catalog,
		sessions: sessions,
		log:      zerolog.Nop(),
		now:      time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the websocket endpoint and the session lookup on mux.
func (h *PlayHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws/play", h.ServeWS)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
}

// GetSession renders the current view of an open play session.
func (h *PlayHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	rt, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		h.log.Error().Err(err).Msg("session lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
		return
	}
	writeJSON(w, http.StatusOK, view.Render(rt.Snapshot(), h.now()))
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type navigatePayload struct {
	Page string `json:"page"`
}

type topicPayload struct {
	Topic string `json:"topic"`
}

type startPayload struct {
	QuizID string `json:"quizId"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type postPayload struct {
	PostID string `json:"postId"`
}

type visitorsPayload struct {
	Count int64 `json:"count"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and plays one session until the client leaves.
func (h *PlayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = visits.AnonymousID(h.initialToken)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var tracker app.Tracker
	if h.trackers != nil {
		tracker = h.trackers(userID)
	}

	log := h.log.With().Str("user", userID).Logger()
	opts := append([]app.RuntimeOption{app.WithLogger(log)}, h.runtimeOpts...)
	rt := app.NewRuntime(uuid.NewString(), h.catalog, tracker, opts...)
	h.sessions.Add(rt)
	defer h.sessions.Remove(rt.ID())

	updates, unsubscribe := rt.Subscribe()
	defer unsubscribe()
	go func() { _ = rt.Run(ctx) }()

	var visitors <-chan int64
	if h.visits != nil {
		go h.visits.Start(ctx, userID)
		visitors = h.visits.Watch(ctx)
	}

	log.Debug().Str("session", rt.ID()).Msg("play session opened")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				// unblock the reader; keep draining so senders never block
				_ = conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			var msg outboundMessage[any]
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				h.sessions.Touch(rt.ID())
				msg = outboundMessage[any]{Type: "state", Payload: view.Render(snap, h.now())}
			case n, ok := <-visitors:
				if !ok {
					visitors = nil
					continue
				}
				msg = outboundMessage[any]{Type: "visitors", Payload: visitorsPayload{Count: n}}
			case <-closeSignals:
				return
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg, err := decodeInbound(inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		if _, err := rt.Dispatch(ctx, msg); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	log.Debug().Str("session", rt.ID()).Msg("play session closed")
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	cancel()
	<-rt.Done()
}

type protocolError string

func (e protocolError) Error() string { return string(e) }

const (
	errUnsupportedType = protocolError("unsupported message type")
	errInvalidPayload  = protocolError("invalid payload")
)

func decodeInbound(in inboundMessage) (app.Message, error) {
	switch in.Type {
	case "getStarted":
		return app.GetStarted{}, nil
	case "navigate":
		var p navigatePayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return nil, err
		}
		return app.Navigate{Page: app.Page(p.Page)}, nil
	case "selectTopic":
		var p topicPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return nil, err
		}
		return app.SelectTopic{Topic: p.Topic}, nil
	case "startQuiz":
		var p startPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return nil, err
		}
		return app.StartQuiz{QuizID: p.QuizID}, nil
	case "selectAnswer":
		var p answerPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return nil, err
		}
		return app.SelectAnswer{Option: p.Option}, nil
	case "next":
		return app.NextQuestion{}, nil
	case "home":
		return app.GoHome{}, nil
	case "openPost":
		var p postPayload
		if err := decodePayload(in.Payload, &p); err != nil {
			return nil, err
		}
		return app.OpenPost{PostID: p.PostID}, nil
	case "dismiss":
		return app.DismissNotice{}, nil
	default:
		return nil, errUnsupportedType
	}
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errInvalidPayload
	}
	return nil
}
