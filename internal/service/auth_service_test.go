package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

type mockAuthUsers struct {
	byEmail map[string]*models.User
	created []*models.User
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *mockAuthUsers) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, user := range m.byEmail {
		if user.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "u-" + user.Name
	}
	if m.byEmail == nil {
		m.byEmail = make(map[string]*models.User)
	}
	m.byEmail[user.Email] = user
	m.created = append(m.created, user)
	return nil
}

type mockOTPStore struct {
	codes map[string]string
}

func (m *mockOTPStore) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[email] = code
	return nil
}

func (m *mockOTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, ok := m.codes[email]
	if !ok || stored != code {
		return false, nil
	}
	delete(m.codes, email)
	return true, nil
}

type captureSender struct {
	email string
	code  string
}

func (s *captureSender) SendOTP(ctx context.Context, email, code string) error {
	s.email = email
	s.code = code
	return nil
}

func newAuthFixture() (*AuthService, *mockAuthUsers, *mockOTPStore, *captureSender) {
	users := &mockAuthUsers{byEmail: map[string]*models.User{}}
	otps := &mockOTPStore{}
	sender := &captureSender{}
	svc := NewAuthService(users, otps, sender, nil, nil, AuthConfig{TokenSecret: "test-secret"})
	return svc, users, otps, sender
}

func seedUser(t *testing.T, users *mockAuthUsers, email, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u-" + email, Name: "User " + email, Email: email, PasswordHash: string(hash), Role: role}
	users.byEmail[email] = user
	return user
}

func TestRegisterAndValidateToken(t *testing.T) {
	svc, users, _, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Maria Cruz",
		Email:    "maria@example.com",
		Password: "sekret1",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Len(t, users.created, 1)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	// the password is stored hashed, never as given
	assert.NotEqual(t, "sekret1", users.created[0].PasswordHash)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	ctx := context.Background()
	seedUser(t, users, "taken@example.com", "whatever", models.RoleStudent)

	cases := []struct {
		name string
		req  models.RegisterRequest
		code string
	}{
		{"bad email", models.RegisterRequest{Name: "Somebody", Email: "not-an-email", Password: "sekret1", Role: "student"}, "VALIDATION_ERROR"},
		{"short password", models.RegisterRequest{Name: "Somebody", Email: "new@example.com", Password: "abc", Role: "student"}, "VALIDATION_ERROR"},
		{"unknown role", models.RegisterRequest{Name: "Somebody", Email: "new@example.com", Password: "sekret1", Role: "admin"}, "VALIDATION_ERROR"},
		{"duplicate email", models.RegisterRequest{Name: "Somebody", Email: "taken@example.com", Password: "sekret1", Role: "student"}, "VALIDATION_ERROR"},
		{"duplicate name", models.RegisterRequest{Name: "User taken@example.com", Email: "new@example.com", Password: "sekret1", Role: "student"}, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			assert.Equal(t, tc.code, errCode(t, err))
		})
	}
}

func TestLogin(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	ctx := context.Background()
	seedUser(t, users, "juan@example.com", "sekret1", models.RoleCounselor)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "juan@example.com", Password: "sekret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCounselor, resp.User.Role)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "juan@example.com", Password: "wrong"})
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "sekret1"})
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestOTPRoundTrip(t *testing.T) {
	svc, users, otps, sender := newAuthFixture()
	ctx := context.Background()
	seedUser(t, users, "juan@example.com", "sekret1", models.RoleStudent)

	err := svc.RequestOTP(ctx, models.LoginRequest{Email: "juan@example.com", Password: "sekret1"})
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", sender.email)
	assert.Len(t, sender.code, 6)
	assert.Equal(t, sender.code, otps.codes["juan@example.com"])

	resp, err := svc.VerifyOTP(ctx, models.VerifyOTPRequest{Email: "juan@example.com", OTP: sender.code})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	// codes are single use
	_, err = svc.VerifyOTP(ctx, models.VerifyOTPRequest{Email: "juan@example.com", OTP: sender.code})
	assert.Equal(t, "INVALID_OTP", errCode(t, err))
}

func TestRequestOTPRequiresValidCredentials(t *testing.T) {
	svc, users, otps, _ := newAuthFixture()
	seedUser(t, users, "juan@example.com", "sekret1", models.RoleStudent)

	err := svc.RequestOTP(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "wrong"})
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	assert.Empty(t, otps.codes)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	svc, users, otps, _ := newAuthFixture()
	seedUser(t, users, "juan@example.com", "sekret1", models.RoleStudent)
	require.NoError(t, otps.Store(context.Background(), "juan@example.com", "123456", time.Minute))

	_, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{Email: "juan@example.com", OTP: "654321"})
	assert.Equal(t, "INVALID_OTP", errCode(t, err))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	seedUser(t, users, "juan@example.com", "sekret1", models.RoleStudent)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "juan@example.com", Password: "sekret1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token + "x")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	other := NewAuthService(users, &mockOTPStore{}, &captureSender{}, nil, nil, AuthConfig{TokenSecret: "different"})
	_, err = other.ValidateToken(resp.Token)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}
