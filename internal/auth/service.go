package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/internal/users"
	pkgauth "github.com/selimbouaziz/ateliera-backend/pkg/auth"
	"github.com/selimbouaziz/ateliera-backend/pkg/config"
	"github.com/selimbouaziz/ateliera-backend/pkg/db"
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	pkgredis "github.com/selimbouaziz/ateliera-backend/pkg/redis"
	"github.com/selimbouaziz/ateliera-backend/pkg/security"
	"github.com/selimbouaziz/ateliera-backend/pkg/sendgrid"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	invalidOtpMessage         = "invalid or expired code"
	rateLimitMessage          = "too many attempts, retry later"
)

var (
	purposeRegister = enums.OtpPurposeRegister.String()
	purposeReset    = enums.OtpPurposeReset.String()
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest, clientIP string) error
	VerifyOTP(ctx context.Context, req VerifyOtpRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest, clientIP string) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest, clientIP string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// otpStore is the slice of pkg/redis.Client the auth flows depend on.
type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	OtpKey(purpose, email string) string
	PendingRegistrationKey(email string) string
}

type mailer interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Otp            otpStore
	Mailer         mailer
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	OtpConfig      config.OtpConfig
	RateLimit      config.AuthRateLimitConfig
}

type service struct {
	users       userRepository
	otp         otpStore
	mail        mailer
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	otpCfg      config.OtpConfig
	rateCfg     config.AuthRateLimitConfig

	now func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Otp == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:       params.UserRepo,
		otp:         params.Otp,
		mail:        params.Mailer,
		logg:        params.Logger,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		otpCfg:      params.OtpConfig,
		rateCfg:     params.RateLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest, clientIP string) error {
	email := normalizeEmail(req.Email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := s.allow(ctx, "register:ip:"+clientIP, s.rateCfg.RegisterIPLimit, s.rateCfg.RegisterWindow); err != nil {
		return err
	}
	if err := s.allow(ctx, "register:email:"+hashScope(email), s.rateCfg.RegisterEmailLimit, s.rateCfg.RegisterWindow); err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
	if existing != nil && existing.IsVerified {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	pending := pendingRegistration{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pending registration")
	}
	if err := s.otp.Set(ctx, s.otp.PendingRegistrationKey(email), payload, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache pending registration")
	}

	if err := s.issueOtp(ctx, purposeRegister, email, "Your Ateliera verification code"); err != nil {
		return err
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOtpRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidOtpMessage)
	}

	if err := s.consumeOtp(ctx, purposeRegister, email, req.Code); err != nil {
		return nil, err
	}

	raw, err := s.otp.GetDel(ctx, s.otp.PendingRegistrationKey(email))
	if err != nil {
		if errors.Is(err, pkgredis.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration expired, please register again")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending registration")
	}
	var pending pendingRegistration
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pending registration")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		Role:         enums.UserRoleCustomer,
		IsVerified:   true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.sessionResponse(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest, clientIP string) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.allow(ctx, "login:ip:"+clientIP, s.rateCfg.LoginIPLimit, s.rateCfg.LoginWindow); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, "login:email:"+hashScope(email), s.rateCfg.LoginEmailLimit, s.rateCfg.LoginWindow); err != nil {
		return nil, err
	}

	user, err := s.authenticate(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	return s.sessionResponse(user)
}

// ForgotPassword answers identically whether or not the account exists
// so the endpoint cannot be used to probe for registered emails.
func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest, clientIP string) error {
	email := normalizeEmail(req.Email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := s.allow(ctx, "forgot:ip:"+clientIP, s.rateCfg.RegisterIPLimit, s.rateCfg.RegisterWindow); err != nil {
		return err
	}
	if err := s.allow(ctx, "forgot:email:"+hashScope(email), s.rateCfg.RegisterEmailLimit, s.rateCfg.RegisterWindow); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsVerified || !user.IsActive {
		return nil
	}

	if err := s.issueOtp(ctx, purposeReset, email, "Your Ateliera password reset code"); err != nil {
		s.logg.Warn(ctx, "reset code delivery failed: "+err.Error())
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidOtpMessage)
	}
	if req.NewPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password is required")
	}

	if err := s.consumeOtp(ctx, purposeReset, email, req.Code); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, invalidOtpMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	passwordHash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store password")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return users.FromModel(user), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsVerified || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// issueOtp generates a fresh code under (purpose, email) and emails it.
func (s *service) issueOtp(ctx context.Context, purpose, email, subject string) error {
	code, err := security.GenerateOtp(s.otpCfg.Digits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	if err := s.otp.Set(ctx, s.otp.OtpKey(purpose, email), code, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	body := fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(s.otpCfg.TTL.Minutes()))
	if err := s.mail.Send(ctx, sendgrid.Message{To: email, Subject: subject, TextBody: body}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}
	return nil
}

// consumeOtp compares the submitted code against the stored entry and
// deletes it on match. A mismatch leaves the entry in place until its
// TTL; a matched code can never validate twice.
func (s *service) consumeOtp(ctx context.Context, purpose, email, code string) error {
	key := s.otp.OtpKey(purpose, email)
	stored, err := s.otp.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pkgredis.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, invalidOtpMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if stored != code {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidOtpMessage)
	}
	if err := s.otp.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
	}
	return nil
}

func (s *service) sessionResponse(user *models.User) (*AuthResponse, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   strings.TrimSpace(user.FirstName + " " + user.LastName),
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{AccessToken: token, User: users.FromModel(user)}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}
	ok, _, err := s.otp.FixedWindowAllow(ctx, scope, int64(limit), window)
	if err != nil {
		s.logg.Warn(ctx, "rate limit check failed: "+err.Error())
		return nil
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeRateLimit, rateLimitMessage)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashScope(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}
