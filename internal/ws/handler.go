package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/style"
)

// Handler provides the WebSocket endpoint that streams branding changes.
type Handler struct {
	hub            *Hub
	surface        style.Snapshotter
	originPatterns []string
	unsubscribe    []func()
	logger         *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to theme and style
// events on bus. originPatterns are host patterns accepted for cross-origin
// upgrades; same-origin requests are always allowed.
func NewHandler(bus event.Subscriber, surface style.Snapshotter, originPatterns []string, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:            NewHub(logger),
		surface:        surface,
		originPatterns: originPatterns,
		logger:         logger,
	}
	h.subscribeToEvents(bus)
	return h
}

// Hub returns the handler's hub.
func (h *Handler) Hub() *Hub { return h.hub }

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/branding", h.handleBrandingStream)
}

// Close removes the handler's bus subscriptions.
func (h *Handler) Close() {
	for _, un := range h.unsubscribe {
		un()
	}
	h.unsubscribe = nil
}

// handleBrandingStream upgrades the connection, sends the current surface
// snapshot, then streams every subsequent change.
func (h *Handler) handleBrandingStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		id:     uuid.NewString(),
		send:   make(chan Message, sendBuffer),
		logger: h.logger,
	}

	// Register before the snapshot so changes made while it is taken are
	// queued behind it rather than lost.
	h.hub.Register(client)

	ctx := r.Context()
	if h.surface != nil {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := wsjson.Write(writeCtx, conn, Message{
			Type:      MessageSurfaceSnapshot,
			Timestamp: time.Now().UTC(),
			Data:      h.surface.Snapshot(),
		})
		cancel()
		if err != nil {
			h.hub.Unregister(client)
			conn.Close(websocket.StatusInternalError, "initial snapshot failed")
			return
		}
	}

	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

func (h *Handler) subscribeToEvents(bus event.Subscriber) {
	if bus == nil {
		return
	}

	h.unsubscribe = append(h.unsubscribe, bus.Subscribe(event.TopicStyleApplied, func(_ context.Context, e event.Event) {
		snap, ok := e.Payload.(style.Snapshot)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{Type: MessageStyleApplied, Timestamp: e.Timestamp, Data: snap})
	}))

	h.unsubscribe = append(h.unsubscribe, bus.Subscribe(event.TopicThemeLoaded, func(_ context.Context, e event.Event) {
		p, ok := e.Payload.(event.ThemeLoaded)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageThemeLoaded,
			Timestamp: e.Timestamp,
			Data:      ThemeLoadedData{Config: p.Config, Tier: p.Tier},
		})
	}))

	h.unsubscribe = append(h.unsubscribe, bus.Subscribe(event.TopicThemeSaved, func(_ context.Context, e event.Event) {
		p, ok := e.Payload.(event.ThemeSaved)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageThemeSaved,
			Timestamp: e.Timestamp,
			Data:      ThemeSavedData{Config: p.Config, Source: p.Source, Degraded: p.Degraded},
		})
	}))

	h.logger.Debug("subscribed to branding events for WebSocket broadcasting")
}
