package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/repository"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService registers users, checks passwords and issues and verifies bearer tokens.
type AuthService struct {
	repo      authUserRepository
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, audit *AuditService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiration <= 0 {
		config.Expiration = 7 * 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a citizen or government account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Aadhaar = strings.TrimSpace(req.Aadhaar)
	req.Department = strings.TrimSpace(req.Department)

	if !req.Role.Valid() {
		return nil, appErrors.WithField("role", "Invalid role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Validation failed")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Mobile:       req.Mobile,
		Role:         req.Role,
		Active:       true,
	}
	// national id belongs to citizens, department to officials
	switch req.Role {
	case models.RoleCitizen:
		if req.Aadhaar != "" {
			user.Aadhaar = &req.Aadhaar
		}
	case models.RoleGovernment:
		if req.Department != "" {
			user.Department = &req.Department
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create token")
	}

	actor := models.ActorFromUser(user)
	actor.IP, actor.UserAgent = req.IP, req.UserAgent
	s.audit.Record(ctx, actor, models.AuditActionRegister, models.AuditResourceUser, user.ID, map[string]string{"role": string(user.Role)})

	return &models.AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user. Unknown email, inactive account and wrong password all
// produce the same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Validation failed")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create token")
	}

	s.touchLastLogin(ctx, user)

	actor := models.ActorFromUser(user)
	actor.IP, actor.UserAgent = req.IP, req.UserAgent
	s.audit.Record(ctx, actor, models.AuditActionLogin, models.AuditResourceUser, user.ID, map[string]string{"status": "success"})

	return &models.AuthResult{User: user, Token: token}, nil
}

// Verify validates a token, confirms the account is still active, refreshes last-login
// and hands back a freshly issued token.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*models.AuthResult, error) {
	user, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create token")
	}
	s.touchLastLogin(ctx, user)

	return &models.AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to an active user without side effects.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "Account is inactive")
	}
	return user, nil
}

// ParseToken decodes and validates a bearer token. Expired tokens are reported
// separately from malformed or mis-signed ones.
func (s *AuthService) ParseToken(tokenString string) (*models.JWTClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrTokenExpired.Code, appErrors.ErrTokenExpired.Status, appErrors.ErrTokenExpired.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	issuedAt := s.now()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) touchLastLogin(ctx context.Context, user *models.User) {
	ts := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, ts); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.LastLogin = &ts
}
