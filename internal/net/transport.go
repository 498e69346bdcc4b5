package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"CalmCanvas/internal/engine"
	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/logging"
	"CalmCanvas/internal/stamp"
)

var ErrControllerBusy = errors.New("another controller is already connected")

// Document is the part of the canvas the bridge drives.
type Document interface {
	PointerDown(p geom.Point) error
	PointerMove(p geom.Point) error
	PointerUp() error
	CancelStroke() error
	PointerDownAt(input geom.Point, displayed geom.Rect) error
	PointerMoveAt(input geom.Point, displayed geom.Rect) error
	PlaceStamp(kind stamp.Kind, p geom.Point) error
	PlaceStampAt(kind stamp.Kind, input geom.Point, displayed geom.Rect) error
	BlobFill(p geom.Point, radius float64) error
	BlobFillAt(input geom.Point, displayed geom.Rect, radius float64) error
	Undo() error
	Redo() error
	Clear() error
	SetColor(color string) error
	SetWidth(w float64)
	SetOpacity(o float64)
	SetStampSize(size float64)
	SetSymmetry(order int) int
	Snapshot() engine.Snapshot
	ExportDataURI() (string, error)
	EncodePNG(w io.Writer) error
}

// Message is one command from the remote controller. X and Y are canvas
// coordinates, unless W and H carry the size of the controller's drawing
// area, in which case X and Y are relative to that area.
type Message struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Kind  string  `json:"kind,omitempty"`
	Color string  `json:"color,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Reply is sent back after every message.
type Reply struct {
	Type     string `json:"type"`
	History  int    `json:"history"`
	Redo     int    `json:"redo"`
	Drawing  bool   `json:"drawing"`
	Symmetry int    `json:"symmetry"`
	Data     string `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Bridge lets one remote controller at a time, such as a tablet browser,
// draw on the document over a websocket.
type Bridge struct {
	doc      Document
	log      *zap.Logger
	metrics  http.Handler
	upgrader websocket.Upgrader

	mu       sync.Mutex
	active   string // remote address of the connected controller
	stroking bool   // the controller has a stroke in progress
}

// NewBridge returns a bridge for doc. metrics may be nil.
func NewBridge(doc Document, log *zap.Logger, metrics http.Handler) *Bridge {
	return &Bridge{
		doc:     doc,
		log:     logging.OrNop(log).Named("bridge"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1 << 16,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Router returns the HTTP routes served by the bridge.
func (b *Bridge) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", b.handleWS)
	r.Get("/export.png", b.handleExport)
	r.Get("/healthz", b.handleHealth)
	if b.metrics != nil {
		r.Method(http.MethodGet, "/metrics", b.metrics)
	}
	return r
}

// ListenAndServe serves the bridge on addr until ctx is cancelled.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           b.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	b.log.Info("bridge listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge listen on %s: %w", addr, err)
	}
	return nil
}

func (b *Bridge) claim(addr string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != "" {
		return ErrControllerBusy
	}
	b.active = addr
	return nil
}

func (b *Bridge) release() {
	b.mu.Lock()
	b.active = ""
	b.mu.Unlock()
}

func (b *Bridge) setStroking(v bool) {
	b.mu.Lock()
	b.stroking = v
	b.mu.Unlock()
}

// takeStroke reports whether the controller left a stroke open and forgets it.
func (b *Bridge) takeStroke() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	open := b.stroking
	b.stroking = false
	return open
}

func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	addr := r.RemoteAddr
	if err := b.claim(addr); err != nil {
		b.log.Warn("controller rejected", zap.String("remote", addr), zap.Error(err))
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer b.release()

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", zap.String("remote", addr), zap.Error(err))
		return
	}
	defer conn.Close()
	b.log.Info("controller connected", zap.String("remote", addr))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.log.Warn("controller read failed", zap.String("remote", addr), zap.Error(err))
			}
			break
		}
		if err := conn.WriteJSON(b.Handle(msg)); err != nil {
			b.log.Warn("controller write failed", zap.String("remote", addr), zap.Error(err))
			break
		}
	}

	// a stroke the controller never finished is abandoned
	if b.takeStroke() {
		_ = b.doc.CancelStroke()
	}
	b.log.Info("controller disconnected", zap.String("remote", addr))
}

// Handle applies one message to the document and builds the reply.
func (b *Bridge) Handle(msg Message) Reply {
	data, err := b.apply(msg)
	if err != nil {
		b.log.Warn("message rejected", zap.String("type", msg.Type), zap.Error(err))
		reply := b.state("error")
		reply.Error = err.Error()
		return reply
	}
	if data != "" {
		reply := b.state("export")
		reply.Data = data
		return reply
	}
	return b.state("state")
}

func (b *Bridge) apply(msg Message) (string, error) {
	p := geom.Pt(msg.X, msg.Y)
	mapped := msg.W > 0 && msg.H > 0
	rect := geom.Rect{Width: msg.W, Height: msg.H}

	switch msg.Type {
	case "down":
		var err error
		if mapped {
			err = b.doc.PointerDownAt(p, rect)
		} else {
			err = b.doc.PointerDown(p)
		}
		b.setStroking(err == nil)
		return "", err
	case "move":
		if mapped {
			return "", b.doc.PointerMoveAt(p, rect)
		}
		return "", b.doc.PointerMove(p)
	case "up":
		b.setStroking(false)
		return "", b.doc.PointerUp()
	case "cancel":
		b.setStroking(false)
		return "", b.doc.CancelStroke()
	case "stamp":
		kind, err := stamp.ParseKind(msg.Kind)
		if err != nil {
			return "", err
		}
		if mapped {
			return "", b.doc.PlaceStampAt(kind, p, rect)
		}
		return "", b.doc.PlaceStamp(kind, p)
	case "blob":
		if mapped {
			return "", b.doc.BlobFillAt(p, rect, msg.Value)
		}
		return "", b.doc.BlobFill(p, msg.Value)
	case "undo":
		return "", b.doc.Undo()
	case "redo":
		return "", b.doc.Redo()
	case "clear":
		b.setStroking(false)
		return "", b.doc.Clear()
	case "color":
		if msg.Color == "" {
			return "", errors.New("color message without color")
		}
		return "", b.doc.SetColor(msg.Color)
	case "width":
		b.doc.SetWidth(msg.Value)
	case "opacity":
		b.doc.SetOpacity(msg.Value)
	case "size":
		b.doc.SetStampSize(msg.Value)
	case "symmetry":
		b.doc.SetSymmetry(int(msg.Value))
	case "export":
		return b.doc.ExportDataURI()
	default:
		return "", fmt.Errorf("unknown message type %q", msg.Type)
	}
	return "", nil
}

func (b *Bridge) state(typ string) Reply {
	s := b.doc.Snapshot()
	return Reply{
		Type:     typ,
		History:  s.History,
		Redo:     s.Redo,
		Drawing:  s.Drawing,
		Symmetry: s.Symmetry,
	}
}

func (b *Bridge) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := b.doc.EncodePNG(w); err != nil {
		b.log.Error("export failed", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b.doc.Snapshot())
}
