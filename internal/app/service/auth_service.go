package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"github.com/khanaghar/khanaghar-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailInvalid       = errors.New("email address is not valid")
	ErrEmailUndeliverable = errors.New("email address is not deliverable")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOtp         = errors.New("invalid OTP")
	ErrOtpExpired         = errors.New("OTP has expired")
	ErrNoPendingSignup    = errors.New("no pending signup for this email")
	ErrOtpDeliveryFailed  = errors.New("failed to deliver OTP code")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrNotACook           = errors.New("account is not a cook")
)

// SignupPayload is the prospective account captured at OTP-request time
type SignupPayload struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	Street     string
	HouseNo    string
	City       string
	PostalCode string
}

const defaultCity = "Karachi"

type AuthService interface {
	RequestSignup(payload SignupPayload, role model.UserRole) error
	ResendSignup(email string, role model.UserRole) error
	VerifySignupOtp(email, code string, role model.UserRole) (*model.User, *util.TokenPair, error)
	SignIn(email, password string) (*model.User, *util.TokenPair, error)
	SignOut(ctx context.Context, token string) error
	RequestAdminSignIn(email, password string) error
	VerifyAdminSignIn(email, code string) (*model.User, *util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	otpRepo       repository.OtpRepository
	notifier      Notifier
	emailVerifier util.EmailVerifier // nil skips the deliverability check
	blacklist     TokenBlacklist
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	signupOtpTTL  time.Duration
	adminOtpTTL   time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	otpRepo repository.OtpRepository,
	notifier Notifier,
	emailVerifier util.EmailVerifier,
	blacklist TokenBlacklist,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
	signupOtpTTL, adminOtpTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		otpRepo:       otpRepo,
		notifier:      notifier,
		emailVerifier: emailVerifier,
		blacklist:     blacklist,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		signupOtpTTL:  signupOtpTTL,
		adminOtpTTL:   adminOtpTTL,
	}
}

func signupPurpose(role model.UserRole) model.OtpPurpose {
	if role == model.RoleCook {
		return model.PurposeCookSignup
	}
	return model.PurposeCustomerSignup
}

func (s *authService) otpTTL(purpose model.OtpPurpose) time.Duration {
	if purpose == model.PurposeAdminSignIn {
		return s.adminOtpTTL
	}
	return s.signupOtpTTL
}

func (s *authService) RequestSignup(payload SignupPayload, role model.UserRole) error {
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	logger.Info("Processing signup request", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	if _, err := mail.ParseAddress(email); err != nil {
		logger.Warn("Signup rejected: invalid email syntax", map[string]interface{}{
			"email": email,
		})
		return ErrEmailInvalid
	}

	// Optional deliverability check via the external provider
	if s.emailVerifier != nil {
		result, err := s.emailVerifier.VerifyEmail(email)
		if err != nil {
			logger.Error("Email deliverability check failed", err, map[string]interface{}{
				"email": email,
			})
			return err
		}
		if !result.Deliverable {
			logger.Warn("Signup rejected: email undeliverable", map[string]interface{}{
				"email":  email,
				"reason": result.Reason,
			})
			return ErrEmailUndeliverable
		}
	}

	// No account may exist for this email yet
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing account", err, map[string]interface{}{
			"email": email,
		})
		return err
	}
	if existing != nil {
		logger.Warn("Signup rejected: email already registered", map[string]interface{}{
			"email": email,
		})
		return ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(payload.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	city := payload.City
	if city == "" {
		city = defaultCity
	}
	pending := model.PendingRegistration{
		Name:         payload.Name,
		Email:        email,
		Phone:        payload.Phone,
		PasswordHash: hashedPassword,
		Role:         role,
		Street:       payload.Street,
		HouseNo:      payload.HouseNo,
		City:         city,
		PostalCode:   payload.PostalCode,
	}
	tempData, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	code, err := util.GenerateOtpCode()
	if err != nil {
		logger.Error("Failed to generate OTP code", err, nil)
		return err
	}

	purpose := signupPurpose(role)
	ttl := s.otpTTL(purpose)
	challenge := &model.OtpChallenge{
		Email:     email,
		Purpose:   purpose,
		OtpCode:   code,
		ExpiresAt: time.Now().Add(ttl),
		TempData:  string(tempData),
	}

	if err := s.otpRepo.Upsert(challenge); err != nil {
		logger.Error("Failed to store OTP challenge", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := s.notifier.SendOtp(email, code, ttl); err != nil {
		// The challenge is unreachable without its email, so roll it back
		// and let the user retry cleanly.
		logger.Error("OTP dispatch failed, rolling back challenge", err, map[string]interface{}{
			"email": email,
		})
		if delErr := s.otpRepo.Delete(challenge.ID); delErr != nil {
			logger.Error("Failed to roll back OTP challenge", delErr, map[string]interface{}{
				"challenge_id": challenge.ID,
			})
		}
		return ErrOtpDeliveryFailed
	}

	logger.Info("Signup OTP issued", map[string]interface{}{
		"email":   email,
		"purpose": purpose,
	})
	return nil
}

func (s *authService) ResendSignup(email string, role model.UserRole) error {
	email = strings.ToLower(strings.TrimSpace(email))
	purpose := signupPurpose(role)

	logger.Info("Processing OTP resend", map[string]interface{}{
		"email":   email,
		"purpose": purpose,
	})

	// Resend only refreshes an existing registration context, it never
	// creates one.
	challenge, err := s.otpRepo.FindUnconsumed(email, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Resend rejected: no pending signup", map[string]interface{}{
				"email": email,
			})
			return ErrNoPendingSignup
		}
		return err
	}

	code, err := util.GenerateOtpCode()
	if err != nil {
		return err
	}

	ttl := s.otpTTL(purpose)
	if err := s.otpRepo.RefreshCode(challenge.ID, code, time.Now().Add(ttl)); err != nil {
		logger.Error("Failed to refresh OTP code", err, map[string]interface{}{
			"challenge_id": challenge.ID,
		})
		return err
	}

	if err := s.notifier.SendOtp(email, code, ttl); err != nil {
		logger.Error("Failed to redispatch OTP code", err, map[string]interface{}{
			"email": email,
		})
		return ErrOtpDeliveryFailed
	}

	logger.Info("Signup OTP resent", map[string]interface{}{
		"email": email,
	})
	return nil
}

func (s *authService) VerifySignupOtp(email, code string, role model.UserRole) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	purpose := signupPurpose(role)

	logger.Info("Verifying signup OTP", map[string]interface{}{
		"email":   email,
		"purpose": purpose,
	})

	challenge, err := s.consumeChallenge(email, purpose, code)
	if err != nil {
		return nil, nil, err
	}

	var pending model.PendingRegistration
	if err := json.Unmarshal([]byte(challenge.TempData), &pending); err != nil {
		logger.Error("Failed to decode pending registration", err, map[string]interface{}{
			"challenge_id": challenge.ID,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Name:         pending.Name,
		Phone:        pending.Phone,
		Street:       pending.Street,
		HouseNo:      pending.HouseNo,
		City:         pending.City,
		PostalCode:   pending.PostalCode,
		Role:         pending.Role,
		Status:       model.AccountActive,
	}
	if pending.Role == model.RoleCook {
		user.VerificationStatus = model.VerificationNotStarted
		user.ServiceStatus = model.ServiceClosed
	}

	// The unique email index is the final backstop against a concurrent
	// verify creating a duplicate account.
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create account from pending registration", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("Account created from verified signup", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// consumeChallenge resolves an OTP attempt to exactly one of: success,
// ErrOtpExpired, or the single generic ErrInvalidOtp. Code mismatch, wrong
// purpose and replayed codes are deliberately indistinguishable.
func (s *authService) consumeChallenge(email string, purpose model.OtpPurpose, code string) (*model.OtpChallenge, error) {
	challenge, err := s.otpRepo.ConsumeMatching(email, purpose, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("OTP verification failed", map[string]interface{}{
				"email":   email,
				"purpose": purpose,
			})
			return nil, ErrInvalidOtp
		}
		return nil, err
	}
	if !challenge.IsVerified {
		logger.Warn("OTP verification failed: code expired", map[string]interface{}{
			"email":   email,
			"purpose": purpose,
		})
		return nil, ErrOtpExpired
	}
	return challenge, nil
}

func (s *authService) SignIn(email, password string) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Sign-in attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Sign-in failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Sign-in failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	// Suspension blocks sign-in outright, regardless of verification status.
	if user.Status == model.AccountSuspended {
		logger.Warn("Sign-in blocked: account suspended", map[string]interface{}{
			"user_id": user.ID,
			"reason":  user.StatusReason,
		})
		return user, nil, ErrAccountSuspended
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User signed in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// SignOut revokes the presented token. Calling it without a live session is
// a safe no-op: defensive sign-out from UI layers must never error.
func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// Expired or invalid tokens carry no session to revoke
		logger.Debug("Sign-out with no valid session", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	if s.blacklist == nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.Revoke(ctx, token, remaining); err != nil {
		logger.Error("Failed to revoke token on sign-out", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User signed out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) RequestAdminSignIn(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Processing admin sign-in request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if user.Role != model.RoleAdmin || !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Admin sign-in rejected", map[string]interface{}{
			"email": email,
		})
		return ErrInvalidCredentials
	}
	if user.Status == model.AccountSuspended {
		return ErrAccountSuspended
	}

	code, err := util.GenerateOtpCode()
	if err != nil {
		return err
	}

	ttl := s.otpTTL(model.PurposeAdminSignIn)
	challenge := &model.OtpChallenge{
		Email:     email,
		Purpose:   model.PurposeAdminSignIn,
		OtpCode:   code,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.otpRepo.Upsert(challenge); err != nil {
		return err
	}

	if err := s.notifier.SendOtp(email, code, ttl); err != nil {
		logger.Error("Admin sign-in OTP dispatch failed, rolling back", err, map[string]interface{}{
			"email": email,
		})
		if delErr := s.otpRepo.Delete(challenge.ID); delErr != nil {
			logger.Error("Failed to roll back admin sign-in challenge", delErr, nil)
		}
		return ErrOtpDeliveryFailed
	}

	logger.Info("Admin sign-in OTP issued", map[string]interface{}{
		"email": email,
	})
	return nil
}

func (s *authService) VerifyAdminSignIn(email, code string) (*model.User, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.consumeChallenge(email, model.PurposeAdminSignIn, code); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	// Status may have changed inside the OTP window
	if user.Status == model.AccountSuspended {
		return nil, nil, ErrAccountSuspended
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtSecret, s.accessExpiry, s.refreshExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Admin signed in via OTP", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}
