package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jvanwell/taskbank/internal/backup"
	"github.com/jvanwell/taskbank/internal/database"
	"github.com/jvanwell/taskbank/internal/evidence"
	"github.com/jvanwell/taskbank/internal/logging"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/notify"
	"github.com/jvanwell/taskbank/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	genVAPID := flag.Bool("generate-vapid-keys", false, "print a fresh VAPID key pair and exit")
	flag.Parse()

	if *genVAPID {
		pub, priv, err := notify.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("failed to generate VAPID keys: %v", err)
		}
		fmt.Printf("TASKBANK_VAPID_PUBLIC_KEY=%s\n", pub)
		fmt.Printf("TASKBANK_VAPID_PRIVATE_KEY=%s\n", priv)
		return
	}

	logger := logging.Setup(env("TASKBANK_LOG_LEVEL", "info"))

	port := env("TASKBANK_PORT", "8080")
	dbPath := env("TASKBANK_DB_PATH", "taskbank.db")

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	gateSecret := []byte(os.Getenv("TASKBANK_GATE_SECRET"))
	if len(gateSecret) == 0 {
		// Random per-process secret; gate tokens then only survive until
		// the next restart, which is fine for a confirm-within-minutes flow.
		gateSecret = make([]byte, 32)
		if _, err := rand.Read(gateSecret); err != nil {
			log.Fatalf("failed to generate gate secret: %v", err)
		}
	}

	cfg := server.Config{
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("TASKBANK_S3_ENDPOINT"),
				Bucket:    os.Getenv("TASKBANK_S3_BUCKET"),
				Region:    env("TASKBANK_S3_REGION", "auto"),
				AccessKey: os.Getenv("TASKBANK_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("TASKBANK_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("TASKBANK_BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("TASKBANK_BACKUP_HOUR", 2),
			RetentionDays: envInt("TASKBANK_BACKUP_RETENTION_DAYS", 30),
		},
		Notify: notify.Config{
			VAPIDPublicKey:  os.Getenv("TASKBANK_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("TASKBANK_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("TASKBANK_VAPID_SUBSCRIBER"),
		},
		Evidence: evidence.Config{
			Dir: env("TASKBANK_EVIDENCE_DIR", "evidence"),
			S3: evidence.S3Config{
				Endpoint:  os.Getenv("TASKBANK_S3_ENDPOINT"),
				Bucket:    os.Getenv("TASKBANK_EVIDENCE_BUCKET"),
				Region:    env("TASKBANK_S3_REGION", "auto"),
				AccessKey: os.Getenv("TASKBANK_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("TASKBANK_S3_SECRET_KEY"),
			},
		},
		GateSecret: gateSecret,
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	bootstrapManager(srv, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// Periodic cleanup of expired sessions and stale rate-limit buckets.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Taskbank running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// bootstrapManager creates the initial manager account on an empty database
// so the first login is possible.
func bootstrapManager(srv *server.Server, logger *slog.Logger) {
	username := env("TASKBANK_MANAGER_USERNAME", "manager")
	password := os.Getenv("TASKBANK_MANAGER_PASSWORD")
	if password == "" {
		return
	}

	existing, err := srv.UserStore().GetByUsername(username)
	if err != nil {
		log.Fatalf("failed to check manager account: %v", err)
	}
	if existing != nil {
		return
	}

	if _, err := srv.UserStore().Create(username, password, model.RoleManager, "", model.LanguageEnglish); err != nil {
		log.Fatalf("failed to create manager account: %v", err)
	}
	logger.Info("created initial manager account", "username", username)
}
