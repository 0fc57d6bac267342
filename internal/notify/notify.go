// Package notify sends web push notifications to the manager's registered
// devices when assistants complete tasks or log overtime.
package notify

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// Service sends push notifications to manager devices.
type Service struct {
	cfg    Config
	users  *store.UserStore
	push   *store.PushStore
	logger *slog.Logger
}

// NewService creates a push notification service. Enabled only when both
// VAPID keys are configured.
func NewService(cfg Config, users *store.UserStore, push *store.PushStore, logger *slog.Logger) *Service {
	if cfg.Subscriber == "" {
		cfg.Subscriber = "mailto:noreply@taskbank.local"
	}
	return &Service{cfg: cfg, users: users, push: push, logger: logger}
}

// Enabled reports whether the service has VAPID keys to send with.
func (s *Service) Enabled() bool {
	return s.cfg.VAPIDPublicKey != "" && s.cfg.VAPIDPrivateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.cfg.VAPIDPublicKey
}

// TaskDone notifies the manager that an assistant completed a task.
func (s *Service) TaskDone(task *model.Task, byUsername string) {
	s.notifyManager(Payload{
		Title: "Task completed",
		Body:  fmt.Sprintf("%s marked %q done", byUsername, task.Title),
		URL:   fmt.Sprintf("/tasks/%d", task.ID),
		Tag:   model.NotifTypeTaskDone,
	})
}

// OvertimeLogged notifies the manager that an assistant logged overtime.
func (s *Service) OvertimeLogged(entry *model.OvertimeEntry) {
	direction := "banked"
	if !entry.IsAdd {
		direction = "used"
	}
	s.notifyManager(Payload{
		Title: "Overtime logged",
		Body:  fmt.Sprintf("%s %s %d minutes on %s", entry.Username, direction, entry.Minutes, entry.Date),
		URL:   "/overtime/" + entry.Username,
		Tag:   model.NotifTypeOvertimeLogged,
	})
}

// notifyManager fans the payload out to every subscription registered by a
// manager account. Expired subscriptions are pruned as they are discovered.
func (s *Service) notifyManager(payload Payload) {
	if !s.Enabled() {
		return
	}

	managers, err := s.managerSubscriptions()
	if err != nil {
		s.logger.Error("load manager subscriptions", "error", err)
		return
	}

	for _, sub := range managers {
		if err := s.send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					s.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			s.logger.Error("send push", "endpoint", sub.Endpoint, "error", err)
		}
	}
}

func (s *Service) managerSubscriptions() ([]model.PushSubscription, error) {
	managers, err := s.users.ListManagers()
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	var subs []model.PushSubscription
	for _, mgr := range managers {
		userSubs, err := s.push.ListByUser(mgr.ID)
		if err != nil {
			return nil, fmt.Errorf("list subscriptions for %s: %w", mgr.Username, err)
		}
		subs = append(subs, userSubs...)
	}
	return subs, nil
}

func (s *Service) send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		Subscriber:      s.cfg.Subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	// Left-pad the scalar so the private key is always exactly 32 bytes.
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.FillBytes(make([]byte, 32)))

	return publicKey, privateKey, nil
}
