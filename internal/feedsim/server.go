package feedsim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/livebattle/pkg/logger"
)

// Server replays frames to every websocket client.
type Server struct {
	frames     []Frame
	interval   time.Duration
	loop       bool
	rejectN    int64
	rejectWith int

	handshakes atomic.Int64
	upgrader   websocket.Upgrader
	logger     logger.Logger
}

// NewServer creates a simulator for frames using cfg's replay settings.
func NewServer(frames []Frame, cfg *Config) *Server {
	s := &Server{
		frames:     frames,
		interval:   cfg.Interval,
		loop:       cfg.Loop,
		rejectN:    int64(cfg.RejectN),
		rejectWith: cfg.RejectWith,
		logger:     logger.Get().Named("feedsim"),
	}
	if s.rejectWith == 0 {
		s.rejectWith = http.StatusTooManyRequests
	}
	return s
}

// ServeHTTP upgrades the connection and replays the script.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n := s.handshakes.Add(1)
	if n <= s.rejectN {
		s.logger.Info(ctx, "rejecting handshake", logger.Int64("attempt", n), logger.Int("status", s.rejectWith))
		http.Error(w, http.StatusText(s.rejectWith), s.rejectWith)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(ctx, "upgrade failed", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	channel := r.URL.Query().Get("channel")
	s.logger.Info(ctx, "client connected", logger.String("channel", channel), logger.Int("frames", len(s.frames)))

	// Reads only detect the client leaving.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.replay(ctx, conn, gone); err != nil {
		s.logger.Info(ctx, "replay stopped", logger.Error(err))
		return
	}
	<-gone
}

func (s *Server) replay(ctx context.Context, conn *websocket.Conn, gone <-chan struct{}) error {
	first := true
	for {
		for i, f := range s.frames {
			if !first && s.interval > 0 {
				select {
				case <-time.After(s.interval):
				case <-gone:
					return errors.New("client left")
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(f); err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
			first = false
		}
		if !s.loop {
			return nil
		}
	}
}

// Run serves the simulator on cfg.Addr until ctx is canceled.
func Run(ctx context.Context, cfg *Config) error {
	frames, err := framesFor(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(frames, cfg),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info(ctx, "feed simulator listening",
			logger.String("addr", cfg.Addr),
			logger.Int("frames", len(frames)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func framesFor(cfg *Config) ([]Frame, error) {
	if cfg.Script != "" {
		return LoadScript(cfg.Script)
	}
	n := cfg.Generate
	if n <= 0 {
		n = DefaultGenerate
	}
	return Generate(n, cfg.SlotOne, cfg.SlotTwo), nil
}
