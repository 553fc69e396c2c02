package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// UserService handles profile reads and edits. Email and role are immutable.
type UserService struct {
	repo      userRepository
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns the caller's own profile.
func (s *UserService) Get(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// UpdateProfile applies name, mobile and (for officials) department changes.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, update models.ProfileUpdate) (*models.User, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	if update.Mobile != nil {
		trimmed := strings.TrimSpace(*update.Mobile)
		update.Mobile = &trimmed
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, appErrors.Validation(err, "Validation failed")
	}
	if update.Department != nil && actor.Role != models.RoleGovernment {
		return nil, appErrors.WithField("department", "Only government officials have a department")
	}

	user, err := s.Get(ctx, actor)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Mobile != nil {
		user.Mobile = *update.Mobile
	}
	if update.Department != nil {
		dept := strings.TrimSpace(*update.Department)
		if dept == "" {
			user.Department = nil
		} else {
			user.Department = &dept
		}
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.audit.Record(ctx, actor, models.AuditActionProfileUpdate, models.AuditResourceUser, user.ID, update)
	return user, nil
}
