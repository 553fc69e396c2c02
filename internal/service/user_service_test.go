package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/validation"
)

func strPtr(s string) *string { return &s }

func TestUserServiceUpdateProfile(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Name: "Old", Email: "a@example.com", Mobile: "9876543210", Role: models.RoleGovernment})
	svc := NewUserService(repo, NewAuditService(repo, nil), validation.New(), zap.NewNop())

	actor := models.Actor{ID: "u1", Role: models.RoleGovernment}
	user, err := svc.UpdateProfile(context.Background(), actor, models.ProfileUpdate{
		Name:       strPtr("  Officer Rao "),
		Department: strPtr("Sanitation"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Officer Rao", user.Name)
	assert.Equal(t, "9876543210", user.Mobile)
	assert.Equal(t, "a@example.com", user.Email)
	require.NotNil(t, user.Department)
	assert.Equal(t, "Sanitation", *user.Department)
	assert.Equal(t, 1, repo.profileUpdates)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionProfileUpdate, repo.auditLogs[0].Action)
}

func TestUserServiceCitizenCannotSetDepartment(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Role: models.RoleCitizen})
	svc := NewUserService(repo, nil, validation.New(), nil)

	_, err := svc.UpdateProfile(context.Background(), models.Actor{ID: "u1", Role: models.RoleCitizen}, models.ProfileUpdate{Department: strPtr("Roads")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, repo.profileUpdates)
}

func TestUserServiceRejectsBadMobile(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Role: models.RoleCitizen})
	svc := NewUserService(repo, nil, validation.New(), nil)

	_, err := svc.UpdateProfile(context.Background(), models.Actor{ID: "u1", Role: models.RoleCitizen}, models.ProfileUpdate{Mobile: strPtr("12ab")})
	require.Error(t, err)
	assert.Equal(t, "mobile", appErrors.FromError(err).Details[0].Field)
}

func TestUserServiceGetMissing(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, validation.New(), nil)
	_, err := svc.Get(context.Background(), models.Actor{ID: "ghost"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
