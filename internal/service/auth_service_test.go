package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/civic-complaint-api/internal/models"
	"github.com/noah-isme/civic-complaint-api/internal/repository"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/validation"
)

type mockUserRepo struct {
	users            map[string]*models.User
	createErr        error
	findErr          error
	lastLoginErr     error
	lastLoginUpdated int
	auditLogs        []*models.AuditLog
	profileUpdates   int
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if m.lastLoginErr != nil {
		return m.lastLoginErr
	}
	m.lastLoginUpdated++
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.profileUpdates++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, NewAuditService(repo, zap.NewNop()), validation.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "civic-test",
	})
}

func validRegister(role models.UserRole) models.RegisterRequest {
	return models.RegisterRequest{
		Name:     "Asha Kumar",
		Email:    "Asha@Example.com",
		Mobile:   "9876543210",
		Password: "secret1",
		Aadhaar:  "123456789012",
		Role:     role,
	}
}

func TestAuthServiceRegisterCitizen(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	result, err := svc.Register(context.Background(), validRegister(models.RoleCitizen))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", result.User.Email)
	assert.Equal(t, models.RoleCitizen, result.User.Role)
	require.NotNil(t, result.User.Aadhaar)
	assert.True(t, result.User.Active)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, "secret1", result.User.PasswordHash)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionRegister, repo.auditLogs[0].Action)

	claims, err := svc.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, models.RoleCitizen, claims.Role)
}

func TestAuthServiceRegisterGovernmentDropsAadhaar(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	req := validRegister(models.RoleGovernment)
	req.Department = "Public Works"
	result, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.User.Aadhaar)
	require.NotNil(t, result.User.Department)
	assert.Equal(t, "Public Works", *result.User.Department)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "asha@example.com"})
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegister(models.RoleCitizen))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateEmail))
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestAuthServiceRegisterDuplicateRace(t *testing.T) {
	repo := newMockUserRepo()
	repo.createErr = repository.ErrDuplicate
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegister(models.RoleCitizen))
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateEmail))
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthService(newMockUserRepo())

	cases := map[string]func(r *models.RegisterRequest){
		"short password":   func(r *models.RegisterRequest) { r.Password = "abc" },
		"bad email":        func(r *models.RegisterRequest) { r.Email = "not-an-email" },
		"short mobile":     func(r *models.RegisterRequest) { r.Mobile = "12345" },
		"aadhaar 11 digit": func(r *models.RegisterRequest) { r.Aadhaar = "12345678901" },
		"aadhaar letters":  func(r *models.RegisterRequest) { r.Aadhaar = "12345678901a" },
		"short name":       func(r *models.RegisterRequest) { r.Name = "A" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRegister(models.RoleCitizen)
			mutate(&req)
			_, err := svc.Register(context.Background(), req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.NotEmpty(t, appErr.Details)
		})
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "asha@example.com", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleCitizen, Active: true})
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "ASHA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 1, repo.lastLoginUpdated)
	assert.NotNil(t, result.User.LastLogin)
}

func TestAuthServiceLoginSameErrorForUnknownAndWrongPassword(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "asha@example.com", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleCitizen, Active: true})
	svc := newAuthService(repo)

	_, wrongPass := svc.Login(context.Background(), models.LoginRequest{Email: "asha@example.com", Password: "nope123"})
	_, unknown := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "secret1"})

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, appErrors.FromError(wrongPass).Message, appErrors.FromError(unknown).Message)
	assert.Equal(t, "Invalid credentials", appErrors.FromError(wrongPass).Message)
	assert.Equal(t, 401, appErrors.FromError(unknown).Status)
	assert.Equal(t, 0, repo.lastLoginUpdated)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "asha@example.com", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleCitizen, Active: false})
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginLastLoginFailureIsNotFatal(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "asha@example.com", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleCitizen, Active: true})
	repo.lastLoginErr = errors.New("db down")
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestAuthServiceVerify(t *testing.T) {
	user := &models.User{ID: "u1", Email: "asha@example.com", Role: models.RoleGovernment, Active: true}
	repo := newMockUserRepo(user)
	svc := newAuthService(repo)

	token, err := svc.issueToken(user)
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 1, repo.lastLoginUpdated)
}

func TestAuthServiceVerifyExpiredVsInvalid(t *testing.T) {
	user := &models.User{ID: "u1", Email: "asha@example.com", Role: models.RoleCitizen, Active: true}
	svc := newAuthService(newMockUserRepo(user))

	past := time.Now().Add(-3 * time.Hour).UTC()
	svc.now = func() time.Time { return past }
	expired, err := svc.issueToken(user)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().UTC() }

	_, err = svc.Verify(context.Background(), expired)
	assert.Equal(t, appErrors.ErrTokenExpired.Code, appErrors.FromError(err).Code)

	_, err = svc.Verify(context.Background(), "not.a.token")
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID:           "u1",
		Role:             models.RoleCitizen,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "civic-test", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), forged)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceVerifyInactiveUser(t *testing.T) {
	user := &models.User{ID: "u1", Email: "asha@example.com", Role: models.RoleCitizen, Active: true}
	repo := newMockUserRepo(user)
	svc := newAuthService(repo)

	token, err := svc.issueToken(user)
	require.NoError(t, err)
	user.Active = false

	_, err = svc.Verify(context.Background(), token)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidToken))
	assert.Equal(t, 0, repo.lastLoginUpdated)
}
