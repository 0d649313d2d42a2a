package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/gorilla/websocket"

	"github.com/tomz197/sshooter/internal/config"
	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/loop/client"
	"github.com/tomz197/sshooter/internal/loop/server"
	"github.com/tomz197/sshooter/internal/quality"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultStatsPort   = "8081"
	defaultHostKeyPath = "/app/keys/host_key"
)

// Shared by all SSH sessions
var (
	hub    *server.Hub
	tuning config.Tuning
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	statsPort := config.GetEnv("STATS_PORT", defaultStatsPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	log.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	tuning = config.DefaultTuning()
	if path := os.Getenv("TUNING_FILE"); path != "" {
		var err error
		tuning, err = config.LoadTuning(path)
		if err != nil {
			log.Fatal("Failed to load tuning", "error", err)
		}
		log.Info("Loaded tuning overrides", "file", path)
	}

	hub = server.NewHub()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal("Failed to create server", "error", err)
	}

	statsSrv := newStatsServer(hub, net.JoinHostPort(host, statsPort))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Starting SSH server", "address", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal("Server error", "error", err)
		}
	}()

	log.Info("Starting stats feed", "address", net.JoinHostPort(host, statsPort))
	go func() {
		if err := statsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Stats server error", "error", err)
		}
	}()

	<-done
	log.Info("Shutting down server...")

	// Notify connected players and wait for them to disconnect
	hub.Shutdown(15 * time.Second)
	log.Info("All players notified")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = statsSrv.Shutdown(ctx)
	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Fatal("Shutdown error", "error", err)
	}
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		log.Info("New session", "user", sess.User(), "terminal", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		// Track terminal size across window change events
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		reader := bufio.NewReader(sess)
		c := client.NewClient(hub, reader, sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Capabilities: quality.Detect(pty.Term, true),
			Tuning:       tuning,
		})
		if err := c.Run(); err != nil {
			log.Error("Session error", "user", sess.User(), "error", err)
		}

		log.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// newStatsServer serves live hub statistics as JSON over a websocket.
// Each /live connection receives a snapshot every second.
func newStatsServer(h *server.Hub, addr string) *http.Server {
	upgrader := websocket.Upgrader{
		// The page consuming this feed is served from another origin
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		// Drain incoming frames so peer closes are processed
		go func() {
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		if err := conn.WriteJSON(h.Stats()); err != nil {
			return
		}
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteJSON(h.Stats()); err != nil {
				return
			}
		}
	})

	return &http.Server{Addr: addr, Handler: mux}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
