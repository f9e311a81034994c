package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/internal/testutil"
)

func TestAuditLogRecordsRequestInfo(t *testing.T) {
	store := &testutil.MemoryAudit{}
	svc := NewAuditService(store)

	ctx := WithRequestInfo(context.Background(), "203.0.113.7", "curl/8.0")
	svc.Log(ctx, adminActor, "report.approve", "pending_report", "case_id=#P2000")
	svc.Log(context.Background(), models.Actor{}, "user.login_failed", "user", "username=ghost")

	logs, err := svc.List(context.Background(), repository.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "user.login_failed", logs[0].Action)
	assert.Nil(t, logs[0].UserID)
	assert.Empty(t, logs[0].IPAddress)

	assert.Equal(t, "report.approve", logs[1].Action)
	require.NotNil(t, logs[1].UserID)
	assert.Equal(t, adminActor.UserID, *logs[1].UserID)
	assert.Equal(t, "203.0.113.7", logs[1].IPAddress)
	assert.Equal(t, "curl/8.0", logs[1].UserAgent)
}

func TestAuditListFilters(t *testing.T) {
	store := &testutil.MemoryAudit{}
	svc := NewAuditService(store)
	ctx := context.Background()

	for range 3 {
		svc.Log(ctx, adminActor, "report.approve", "pending_report", "")
	}
	svc.Log(ctx, analystActor, "report.submit", "pending_report", "")
	svc.Log(ctx, adminActor, "user.create", "user", "")

	reports, err := svc.List(ctx, repository.AuditFilter{Action: "report."})
	require.NoError(t, err)
	assert.Len(t, reports, 4)

	uid := analystActor.UserID
	mine, err := svc.List(ctx, repository.AuditFilter{UserID: &uid})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "report.submit", mine[0].Action)

	page, err := svc.List(ctx, repository.AuditFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = svc.List(ctx, repository.AuditFilter{Offset: -1})
	assert.True(t, apperrors.IsValidation(err))
}

type failingAuditStore struct{ testutil.MemoryAudit }

func (*failingAuditStore) Create(context.Context, *models.AuditLog) error {
	return errors.New("audit table locked")
}

func TestAuditFailureDoesNotPropagate(t *testing.T) {
	svc := NewAuditService(&failingAuditStore{})
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), adminActor, "user.delete", "user", "id=9")
	})

	var nilSvc *AuditService
	assert.NotPanics(t, func() {
		nilSvc.Log(context.Background(), adminActor, "user.delete", "user", "id=9")
	})
}
