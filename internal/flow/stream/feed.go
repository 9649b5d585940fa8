package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"flowwatch/internal/flow/engine"
	"flowwatch/internal/flow/memorystore"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Publisher is the engine surface the feed consumes.
type Publisher interface {
	Subscribe(fn engine.SnapshotFunc) engine.Handle
	Unsubscribe(h engine.Handle) bool
	CurrentSnapshot() *memorystore.Snapshot
}

// Feed serves snapshots over WebSocket (/ws) and plain HTTP (/snapshot).
type Feed struct {
	pub          Publisher
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewFeed creates a feed over pub.
func NewFeed(pub Publisher, writeTimeout time.Duration, logger *zap.Logger) *Feed {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Feed{
		pub: pub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Handler returns the feed's routes.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", f.serveWS)
	mux.HandleFunc("/snapshot", f.serveSnapshot)
	return mux
}

// Serve runs the HTTP server on addr until ctx is done.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           f.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		f.logger.Info("snapshot feed listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (f *Feed) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewSnapshotMessage(f.pub.CurrentSnapshot())); err != nil {
		f.logger.Warn("failed to write snapshot", zap.Error(err))
	}
}

func (f *Feed) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// One-slot queue: a slow client only ever sees the newest snapshot and
	// never blocks the publisher.
	updates := make(chan *memorystore.Snapshot, 1)
	h := f.pub.Subscribe(func(s *memorystore.Snapshot) {
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer f.pub.Unsubscribe(h)

	f.logger.Info("feed client connected", zap.String("remote", r.RemoteAddr), zap.Stringer("handle", h))

	// Reader: detect close; clients are not expected to send anything.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			f.logger.Info("feed client disconnected", zap.String("remote", r.RemoteAddr))
			return
		case s := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
			if err := conn.WriteJSON(NewSnapshotMessage(s)); err != nil {
				f.logger.Warn("failed to push snapshot", zap.String("remote", r.RemoteAddr), zap.Error(err))
				return
			}
		}
	}
}
