package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
)

type authUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type otpStore interface {
	Store(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
}

// OTPSender delivers a one-time passcode to the user. Actual email delivery
// lives outside this service; the default implementation only logs.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LoggingOTPSender writes the passcode to the application log. It stands in
// for the external mail collaborator in development and tests.
type LoggingOTPSender struct {
	Logger *zap.Logger
}

// SendOTP implements OTPSender.
func (s *LoggingOTPSender) SendOTP(ctx context.Context, email, code string) error {
	if s.Logger != nil {
		s.Logger.Info("otp issued", zap.String("email", email))
	}
	return nil
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	OTPTTL      time.Duration
	OTPLength   int
}

// AuthService provides registration, login and OTP verification.
type AuthService struct {
	repo      authUserRepository
	otps      otpStore
	sender    OTPSender
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, otps otpStore, sender OTPSender, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 7 * 24 * time.Hour
	}
	if config.OTPTTL <= 0 {
		config.OTPTTL = 10 * time.Minute
	}
	if config.OTPLength <= 0 {
		config.OTPLength = 6
	}
	return &AuthService{repo: repo, otps: otps, sender: sender, validator: validate, logger: logger, config: config}
}

// Register creates a new student or counselor account and signs them in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	role := models.UserRole(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role")
	}

	if exists, err := s.repo.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email already in use")
	}
	if exists, err := s.repo.ExistsByName(ctx, req.Name); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check name")
	} else if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	return s.issueSession(user)
}

// Login authenticates with email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// RequestOTP validates the credentials, stores a fresh passcode under the
// configured TTL and hands it to the sender.
func (s *AuthService) RequestOTP(ctx context.Context, req models.LoginRequest) error {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return err
	}

	code, err := s.generateOTP()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}
	if err := s.otps.Store(ctx, user.Email, code, s.config.OTPTTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store otp")
	}
	if err := s.sender.SendOTP(ctx, user.Email, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deliver otp")
	}
	return nil
}

// VerifyOTP exchanges a valid passcode for a session token. Codes are single
// use and expire on their own.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp payload")
	}

	ok, err := s.otps.Verify(ctx, req.Email, req.OTP)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify otp")
	}
	if !ok {
		return nil, appErrors.ErrInvalidOTP
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return s.issueSession(user)
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueSession(user *models.User) (*models.LoginResponse, error) {
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return &models.LoginResponse{
		Token: token,
		User: models.UserInfo{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

func (s *AuthService) generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.config.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.config.OTPLength, n), nil
}
