package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/khanaghar/khanaghar-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubNotifier records outbound notifications for assertions. Shared by the
// service tests in this package.
type stubNotifier struct {
	otpCodes      []string
	approvedTo    []string
	rejectedTo    []string
	rejections    []map[string]string
	statusChanges []string
	failSendOtp   bool
	failStatus    bool
}

var errStubDelivery = errors.New("smtp unreachable")

func (n *stubNotifier) SendOtp(to, code string, validFor time.Duration) error {
	if n.failSendOtp {
		return errStubDelivery
	}
	n.otpCodes = append(n.otpCodes, code)
	return nil
}

func (n *stubNotifier) SendVerificationApproved(to, name string) error {
	n.approvedTo = append(n.approvedTo, to)
	return nil
}

func (n *stubNotifier) SendVerificationRejected(to, name string, rejections map[string]string) error {
	n.rejectedTo = append(n.rejectedTo, to)
	n.rejections = append(n.rejections, rejections)
	return nil
}

func (n *stubNotifier) SendAccountStatusChanged(to, name, status, reason string) error {
	if n.failStatus {
		return errStubDelivery
	}
	n.statusChanges = append(n.statusChanges, status)
	return nil
}

func (n *stubNotifier) lastOtp() string {
	if len(n.otpCodes) == 0 {
		return ""
	}
	return n.otpCodes[len(n.otpCodes)-1]
}

func setupAuthServiceTest(t *testing.T) (AuthService, *stubNotifier, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	otpRepo := repository.NewOtpRepository(testDB)
	notifier := &stubNotifier{}

	authService := NewAuthService(
		userRepo,
		otpRepo,
		notifier,
		nil,
		nil,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
		10*time.Minute,
		5*time.Minute,
	)

	return authService, notifier, testDB
}

func cookPayload(email string) SignupPayload {
	return SignupPayload{
		Name:     "Ayesha Khan",
		Email:    email,
		Phone:    "0300-1234567",
		Password: "password123",
		Street:   "Shahrah-e-Faisal",
	}
}

func TestAuthService_RequestSignup(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	// An already-registered email is rejected up front
	existing := &model.User{
		Email:        "taken@example.com",
		PasswordHash: "hash",
		Name:         "Existing",
		Street:       "Tariq Road",
		Role:         model.RoleCustomer,
		Status:       model.AccountActive,
	}
	require.NoError(t, testDB.Create(existing).Error)

	tests := []struct {
		name    string
		email   string
		role    model.UserRole
		wantErr error
	}{
		{
			name:  "Valid cook signup",
			email: "ayesha@example.com",
			role:  model.RoleCook,
		},
		{
			name:    "Malformed email",
			email:   "not-an-email",
			role:    model.RoleCook,
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "Email already registered",
			email:   "taken@example.com",
			role:    model.RoleCustomer,
			wantErr: ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authService.RequestSignup(cookPayload(tt.email), tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, notifier.lastOtp())

			// No account exists until the OTP is verified
			var count int64
			testDB.Model(&model.User{}).Where("email = ?", tt.email).Count(&count)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestAuthService_RequestSignup_ReplacesChallenge(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	first := notifier.lastOtp()

	// A second request reuses the single challenge row with a fresh code
	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	second := notifier.lastOtp()

	var count int64
	testDB.Model(&model.OtpChallenge{}).Where("email = ?", "ayesha@example.com").Count(&count)
	assert.Equal(t, int64(1), count)

	if first != second {
		_, _, err := authService.VerifySignupOtp("ayesha@example.com", first, model.RoleCook)
		assert.ErrorIs(t, err, ErrInvalidOtp)
	}

	user, tokens, err := authService.VerifySignupOtp("ayesha@example.com", second, model.RoleCook)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestAuthService_RequestSignup_DeliveryFailureRollsBack(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)
	notifier.failSendOtp = true

	err := authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook)
	assert.ErrorIs(t, err, ErrOtpDeliveryFailed)

	// The unreachable challenge must not linger
	var count int64
	testDB.Model(&model.OtpChallenge{}).Where("email = ?", "ayesha@example.com").Count(&count)
	assert.Equal(t, int64(0), count)

	// The user can retry cleanly once delivery recovers
	notifier.failSendOtp = false
	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
}

func TestAuthService_ResendSignup(t *testing.T) {
	authService, notifier, _ := setupAuthServiceTest(t)

	// Resend never creates a registration context
	err := authService.ResendSignup("nobody@example.com", model.RoleCook)
	assert.ErrorIs(t, err, ErrNoPendingSignup)

	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	require.NoError(t, authService.ResendSignup("ayesha@example.com", model.RoleCook))
	assert.Len(t, notifier.otpCodes, 2)
}

func TestAuthService_VerifySignupOtp(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	code := notifier.lastOtp()

	// Wrong code
	_, _, err := authService.VerifySignupOtp("ayesha@example.com", "000000", model.RoleCook)
	if code != "000000" {
		assert.ErrorIs(t, err, ErrInvalidOtp)
	}

	// Wrong purpose: a cook challenge cannot verify a customer signup
	_, _, err = authService.VerifySignupOtp("ayesha@example.com", code, model.RoleCustomer)
	assert.ErrorIs(t, err, ErrInvalidOtp)

	user, tokens, err := authService.VerifySignupOtp("ayesha@example.com", code, model.RoleCook)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, model.RoleCook, user.Role)
	assert.Equal(t, model.AccountActive, user.Status)
	assert.Equal(t, model.VerificationNotStarted, user.VerificationStatus)
	assert.Equal(t, "Karachi", user.City) // default when signup omits it
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// A consumed challenge cannot mint a second account
	_, _, err = authService.VerifySignupOtp("ayesha@example.com", code, model.RoleCook)
	assert.ErrorIs(t, err, ErrInvalidOtp)

	var count int64
	testDB.Model(&model.User{}).Where("email = ?", "ayesha@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_VerifySignupOtp_Expired(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	code := notifier.lastOtp()

	// Push the challenge past its expiry
	require.NoError(t, testDB.Model(&model.OtpChallenge{}).
		Where("email = ?", "ayesha@example.com").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, _, err := authService.VerifySignupOtp("ayesha@example.com", code, model.RoleCook)
	assert.ErrorIs(t, err, ErrOtpExpired)

	// Expiry does not consume the challenge; a resend revives the flow
	require.NoError(t, testDB.Model(&model.OtpChallenge{}).
		Where("email = ?", "ayesha@example.com").
		Update("expires_at", time.Now().Add(10*time.Minute)).Error)

	_, _, err = authService.VerifySignupOtp("ayesha@example.com", code, model.RoleCook)
	require.NoError(t, err)
}

func TestAuthService_SignIn(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	require.NoError(t, authService.RequestSignup(cookPayload("ayesha@example.com"), model.RoleCook))
	_, _, err := authService.VerifySignupOtp("ayesha@example.com", notifier.lastOtp(), model.RoleCook)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid credentials",
			email:    "ayesha@example.com",
			password: "password123",
		},
		{
			name:     "Wrong password",
			email:    "ayesha@example.com",
			password: "wrong-password",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Unknown email",
			email:    "nobody@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.SignIn(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, tokens.AccessToken)
			}
		})
	}

	// Suspension blocks sign-in even with valid credentials, and surfaces
	// the account so callers can show the reason
	require.NoError(t, testDB.Model(&model.User{}).
		Where("email = ?", "ayesha@example.com").
		Updates(map[string]interface{}{
			"status":        model.AccountSuspended,
			"status_reason": "Hygiene complaint",
		}).Error)

	user, tokens, err := authService.SignIn("ayesha@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountSuspended)
	assert.Nil(t, tokens)
	require.NotNil(t, user)
	assert.Equal(t, "Hygiene complaint", user.StatusReason)
}

func TestAuthService_SignOut(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	// Sign-out is always safe, with or without a live session
	assert.NoError(t, authService.SignOut(context.Background(), ""))
	assert.NoError(t, authService.SignOut(context.Background(), "garbage-token"))
}

func TestAuthService_AdminSignIn(t *testing.T) {
	authService, notifier, testDB := setupAuthServiceTest(t)

	hash, err := util.HashPassword("admin-password")
	require.NoError(t, err)

	admin := &model.User{
		Email:        "admin@khanaghar.pk",
		PasswordHash: hash,
		Name:         "Admin",
		Street:       "I.I. Chundrigar Road",
		Role:         model.RoleAdmin,
		Status:       model.AccountActive,
	}
	require.NoError(t, testDB.Create(admin).Error)

	// Credentials alone do not sign an admin in
	require.NoError(t, authService.RequestAdminSignIn("admin@khanaghar.pk", "admin-password"))
	code := notifier.lastOtp()
	require.NotEmpty(t, code)

	err = authService.RequestAdminSignIn("admin@khanaghar.pk", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, tokens, err := authService.VerifyAdminSignIn("admin@khanaghar.pk", code)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)

	// The sign-in challenge is single use
	_, _, err = authService.VerifyAdminSignIn("admin@khanaghar.pk", code)
	assert.ErrorIs(t, err, ErrInvalidOtp)

	// Suspension inside the OTP window blocks verification
	require.NoError(t, authService.RequestAdminSignIn("admin@khanaghar.pk", "admin-password"))
	code = notifier.lastOtp()
	require.NoError(t, testDB.Model(&model.User{}).Where("id = ?", admin.ID).
		Updates(map[string]interface{}{"status": model.AccountSuspended, "status_reason": "Policy breach"}).Error)

	_, _, err = authService.VerifyAdminSignIn("admin@khanaghar.pk", code)
	assert.ErrorIs(t, err, ErrAccountSuspended)
}
