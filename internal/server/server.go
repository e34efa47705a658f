package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/eventledger/internal/backup"
	"github.com/dukerupert/eventledger/internal/clock"
	"github.com/dukerupert/eventledger/internal/config"
	"github.com/dukerupert/eventledger/internal/handler"
	"github.com/dukerupert/eventledger/internal/ledger"
	"github.com/dukerupert/eventledger/internal/middleware"
	"github.com/dukerupert/eventledger/internal/proposal"
	ws "github.com/dukerupert/eventledger/internal/websocket"
)

type Server struct {
	repo          *ledger.Repository
	hub           *ws.Hub
	eventH        *handler.EventHandler
	calendarH     *handler.CalendarHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	origins       []string
	logger        *slog.Logger
}

func New(repo *ledger.Repository, clk clock.Clock, proposer *proposal.Service, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	repo.OnChange(func(c ledger.Change) {
		hub.Broadcast(ws.EventMessage(string(c.Kind), c.Seq, c.Event))
	})

	backupMgr := backup.NewManager(backup.Config{
		Dir:        cfg.BackupDir,
		Passphrase: cfg.BackupPassphrase,
		Schedule:   cfg.BackupSchedule,
		Retain:     cfg.BackupRetain,
	}, repo, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger.With("component", "backup"))

	return &Server{
		repo:          repo,
		hub:           hub,
		eventH:        handler.NewEventHandler(repo, proposer, logger.With("component", "events")),
		calendarH:     handler.NewCalendarHandler(repo, clk),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		rateLimiter:   middleware.NewRateLimiter(cfg.RegisterLimit, time.Minute),
		backupManager: backupMgr,
		origins:       cfg.Origins(),
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins, s.hello))

	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PATCH /api/events/{id}", s.eventH.Update)
	mux.Handle("POST /api/events/{id}/register", s.rateLimited(s.eventH.Register))

	mux.HandleFunc("GET /api/calendar", s.calendarH.Month)
	mux.HandleFunc("GET /calendar.ics", s.calendarH.ICS)

	mux.HandleFunc("GET /api/backup", s.backupH.Status)
	mux.HandleFunc("POST /api/backup", s.backupH.RunNow)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"events":  s.repo.Len(),
		"clients": s.hub.ClientCount(),
	})
}

// hello tells a new subscriber where the ledger stands. Event messages with
// a seq at or below it are already reflected in a fetch made after it.
func (s *Server) hello() ws.Message {
	return ws.NewMessage("ledger", "sync", "", map[string]any{
		"seq":    s.repo.Seq(),
		"events": s.repo.Len(),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h)
}
