package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuditSink struct{}

func (failingAuditSink) Create(context.Context, repository.CreateAuditLogInput) (int64, error) {
	return 0, errors.New("database gone")
}

type failingNotificationSink struct{}

func (failingNotificationSink) Create(context.Context, repository.CreateNotificationInput) (*domain.Notification, error) {
	return nil, errors.New("database gone")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditRecordWritesEntry(t *testing.T) {
	sink := &memAuditSink{}
	svc := &AuditService{Logs: sink, Logger: discardLogger()}

	actor := int64(5)
	svc.Record(AuditEntry{
		ActorID:    &actor,
		ActorName:  "Main Vet",
		Action:     domain.ActionUpdate,
		EntityType: "inventory_item",
		EntityID:   42,
		EntityName: "Amoxicillin 500mg",
		After:      map[string]int{"stock": 400},
		Summary:    "stock subtract: dispensed",
	})
	svc.Close()

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, "42", entry.EntityID)
	assert.Equal(t, domain.SeverityInfo, entry.Severity)
	assert.JSONEq(t, `{"stock":400}`, string(entry.After))
}

func TestAuditNotifyDefaultsType(t *testing.T) {
	sink := &memNotificationSink{}
	svc := &AuditService{Notifications: sink, Logger: discardLogger()}

	svc.Notify(NotificationEntry{UserID: 7, Title: "Appointment confirmed"})
	svc.Close()

	require.Len(t, sink.entries, 1)
	assert.Equal(t, domain.NotificationInfo, sink.entries[0].Type)
}

func TestAuditFailuresNeverPropagate(t *testing.T) {
	svc := &AuditService{Logs: failingAuditSink{}, Notifications: failingNotificationSink{}, Logger: discardLogger()}

	// Neither call returns an error nor panics; Close drains the workers.
	svc.Record(AuditEntry{Action: domain.ActionDelete, EntityType: "pet", EntityID: 1})
	svc.Notify(NotificationEntry{UserID: 7, Title: "never arrives"})
	svc.Close()
}

func TestAuditNilSinksAreNoOps(t *testing.T) {
	svc := &AuditService{}
	svc.Record(AuditEntry{EntityType: "pet"})
	svc.Notify(NotificationEntry{Title: "ignored"})
	svc.Close()
}
