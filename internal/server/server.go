package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jvanwell/taskbank/internal/backup"
	"github.com/jvanwell/taskbank/internal/evidence"
	"github.com/jvanwell/taskbank/internal/gate"
	"github.com/jvanwell/taskbank/internal/handler"
	"github.com/jvanwell/taskbank/internal/middleware"
	"github.com/jvanwell/taskbank/internal/notify"
	"github.com/jvanwell/taskbank/internal/store"
	ws "github.com/jvanwell/taskbank/internal/websocket"
)

// Config collects everything the server needs beyond the database handle.
type Config struct {
	Backup     backup.Config
	Notify     notify.Config
	Evidence   evidence.Config
	GateSecret []byte
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	taskH         *handler.TaskHandler
	overtimeH     *handler.OvertimeHandler
	historyH      *handler.HistoryHandler
	preferenceH   *handler.PreferenceHandler
	habitsH       *handler.HabitsHandler
	authH         *handler.AuthHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	adminH        *handler.AdminHandler
	userStore     *store.UserStore
	sessionStore  *store.SessionStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	taskStore := store.NewTaskStore(db)
	auditStore := store.NewAuditStore(db)
	overtimeStore := store.NewOvertimeStore(db)
	prefStore := store.NewPreferenceStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	notifier := notify.NewService(cfg.Notify, userStore, pushStore, logger.With("component", "notify"))

	evidenceStore, err := evidence.NewStore(cfg.Evidence, logger.With("component", "evidence"))
	if err != nil {
		return nil, err
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	})

	gateSvc := gate.NewService(gate.Config{Secret: cfg.GateSecret})

	return &Server{
		db:            db,
		hub:           hub,
		taskH:         handler.NewTaskHandler(taskStore, auditStore, prefStore, evidenceStore, notifier, hub),
		overtimeH:     handler.NewOvertimeHandler(overtimeStore, notifier, hub),
		historyH:      handler.NewHistoryHandler(auditStore),
		preferenceH:   handler.NewPreferenceHandler(prefStore, taskStore),
		habitsH:       handler.NewHabitsHandler(taskStore, auditStore),
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		pushH:         handler.NewPushHandler(pushStore, notifier),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, gateSvc),
		adminH:        handler.NewAdminHandler(gateSvc, taskStore, overtimeStore, userStore, sessionStore, hub),
		userStore:     userStore,
		sessionStore:  sessionStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// UserStore returns the user store for bootstrap tasks.
func (s *Server) UserStore() *store.UserStore {
	return s.userStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// manager wraps a handler so only manager accounts reach it.
func manager(h http.HandlerFunc) http.Handler {
	return middleware.RequireManager(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateProfile)

	// Task API routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.Handle("POST /api/tasks", manager(s.taskH.Create))
	mux.Handle("PUT /api/tasks/{id}", manager(s.taskH.Update))
	mux.Handle("PUT /api/tasks/{id}/pin", manager(s.taskH.SetPinned))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("GET /api/tasks/{id}/evidence", s.taskH.Evidence)
	mux.HandleFunc("GET /api/tasks/{id}/history", s.historyH.ListByTask)

	// Preference API routes
	mux.HandleFunc("GET /api/preferences", s.preferenceH.List)
	mux.HandleFunc("PUT /api/tasks/{id}/preference", s.preferenceH.Set)

	// History API routes
	mux.Handle("GET /api/history", manager(s.historyH.ListAll))

	// Overtime API routes
	mux.HandleFunc("POST /api/overtime", s.overtimeH.Log)
	mux.HandleFunc("PUT /api/overtime/latest", s.overtimeH.EditLatest)
	mux.HandleFunc("GET /api/overtime", s.overtimeH.Ledger)
	mux.HandleFunc("GET /api/overtime/{username}", s.overtimeH.Ledger)
	mux.Handle("GET /api/overtime-overview", manager(s.overtimeH.Overview))

	// Habits API routes
	mux.HandleFunc("GET /api/habits", s.habitsH.Get)
	mux.HandleFunc("GET /api/habits/{username}", s.habitsH.Get)

	// Assistant management (manager only)
	mux.Handle("GET /api/assistants", manager(s.authH.ListAssistants))
	mux.Handle("POST /api/assistants", manager(s.authH.RegisterAssistant))
	mux.Handle("DELETE /api/assistants/{id}", manager(s.adminH.DeleteAssistant))

	// Push notification API routes
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// Backup API routes (manager only)
	mux.Handle("GET /api/backups", manager(s.backupH.List))
	mux.Handle("GET /api/backups/status", manager(s.backupH.Status))
	mux.Handle("POST /api/backups/run", manager(s.backupH.RunNow))
	mux.Handle("GET /api/backups/{id}/download", manager(s.backupH.Download))
	mux.Handle("POST /api/backups/{id}/restore", manager(s.backupH.Restore))

	// Gated destructive operations (manager only)
	mux.Handle("POST /api/admin/gate", manager(s.adminH.IssueGate))
	mux.Handle("POST /api/admin/reset-tasks", manager(s.adminH.ResetTasks))
	mux.Handle("POST /api/admin/reset-overtime", manager(s.adminH.ResetOvertime))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
