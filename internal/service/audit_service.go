package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
)

// sideChannelDrops counts audit/notification writes that failed. The primary
// operation never sees these failures; the counter is their only trace
// besides the log line.
var sideChannelDrops = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "petportal_side_channel_dropped_total",
	Help: "Best-effort audit/notification writes that failed.",
}, []string{"channel"})

type AuditSink interface {
	Create(ctx context.Context, in repository.CreateAuditLogInput) (int64, error)
}

type NotificationSink interface {
	Create(ctx context.Context, in repository.CreateNotificationInput) (*domain.Notification, error)
}

// AuditService is the fire-and-forget side channel behind every entity
// mutation. Writes are detached from the caller's request: they run on their
// own goroutine with their own deadline, and failures are logged and counted
// but never propagated.
type AuditService struct {
	Logs          AuditSink
	Notifications NotificationSink
	Logger        *slog.Logger

	wg sync.WaitGroup
}

type AuditEntry struct {
	ActorID    *int64
	ActorName  string
	Action     domain.AuditAction
	EntityType string
	EntityID   int64
	EntityName string
	Before     any
	After      any
	Summary    string
	Severity   domain.AuditSeverity
}

type NotificationEntry struct {
	UserID   int64
	Title    string
	Message  string
	Type     domain.NotificationType
	Priority domain.NotificationPriority
}

// Record writes an audit entry in the background.
func (s *AuditService) Record(entry AuditEntry) {
	if s == nil || s.Logs == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		severity := entry.Severity
		if severity == "" {
			severity = domain.SeverityInfo
		}
		_, err := s.Logs.Create(ctx, repository.CreateAuditLogInput{
			ActorID:    entry.ActorID,
			ActorName:  entry.ActorName,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   strconv.FormatInt(entry.EntityID, 10),
			EntityName: entry.EntityName,
			Before:     marshalSnapshot(entry.Before),
			After:      marshalSnapshot(entry.After),
			Summary:    entry.Summary,
			Severity:   severity,
			Timestamp:  time.Now(),
		})
		if err != nil {
			sideChannelDrops.WithLabelValues("audit").Inc()
			if s.Logger != nil {
				s.Logger.Warn("audit write dropped", "entity", entry.EntityType, "action", entry.Action, "err", err)
			}
		}
	}()
}

// Notify creates a user-visible notification in the background.
func (s *AuditService) Notify(entry NotificationEntry) {
	if s == nil || s.Notifications == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		typ := entry.Type
		if typ == "" {
			typ = domain.NotificationInfo
		}
		_, err := s.Notifications.Create(ctx, repository.CreateNotificationInput{
			UserID:   entry.UserID,
			Title:    entry.Title,
			Message:  entry.Message,
			Type:     typ,
			Priority: entry.Priority,
		})
		if err != nil {
			sideChannelDrops.WithLabelValues("notification").Inc()
			if s.Logger != nil {
				s.Logger.Warn("notification write dropped", "user", entry.UserID, "title", entry.Title, "err", err)
			}
		}
	}()
}

// Close waits for in-flight side-channel writes. Called on shutdown.
func (s *AuditService) Close() {
	s.wg.Wait()
}

func marshalSnapshot(v any) []byte {
	if v == nil {
		return nil
	}
	if raw, ok := v.([]byte); ok {
		return raw
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
