package repository

import (
	"testing"
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOtpRepoTest(t *testing.T) (OtpRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewOtpRepository(testDB), testDB
}

func newChallenge(email string, purpose model.OtpPurpose, code string) *model.OtpChallenge {
	return &model.OtpChallenge{
		Email:     email,
		Purpose:   purpose,
		OtpCode:   code,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		TempData:  `{"name":"Ayesha"}`,
	}
}

func TestOtpRepository_Upsert(t *testing.T) {
	otpRepo, testDB := setupOtpRepoTest(t)

	first := newChallenge("ayesha@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, otpRepo.Upsert(first))

	// The same (email, purpose) reuses the row with fresh code and state
	second := newChallenge("ayesha@example.com", model.PurposeCookSignup, "222222")
	require.NoError(t, otpRepo.Upsert(second))
	assert.Equal(t, first.ID, second.ID)

	var count int64
	testDB.Model(&model.OtpChallenge{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// A different purpose for the same email is a separate challenge
	admin := newChallenge("ayesha@example.com", model.PurposeAdminSignIn, "333333")
	require.NoError(t, otpRepo.Upsert(admin))
	assert.NotEqual(t, first.ID, admin.ID)

	stored, err := otpRepo.FindUnconsumed("ayesha@example.com", model.PurposeCookSignup)
	require.NoError(t, err)
	assert.Equal(t, "222222", stored.OtpCode)
}

func TestOtpRepository_UpsertResetsConsumption(t *testing.T) {
	otpRepo, _ := setupOtpRepoTest(t)

	challenge := newChallenge("ayesha@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, otpRepo.Upsert(challenge))

	_, err := otpRepo.ConsumeMatching("ayesha@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, err)

	// A consumed row disappears from the unconsumed view
	_, err = otpRepo.FindUnconsumed("ayesha@example.com", model.PurposeCookSignup)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Re-requesting revives it as a fresh, unconsumed challenge
	require.NoError(t, otpRepo.Upsert(newChallenge("ayesha@example.com", model.PurposeCookSignup, "444444")))

	revived, err := otpRepo.FindUnconsumed("ayesha@example.com", model.PurposeCookSignup)
	require.NoError(t, err)
	assert.Equal(t, "444444", revived.OtpCode)
	assert.False(t, revived.IsVerified)
}

func TestOtpRepository_ConsumeMatching(t *testing.T) {
	otpRepo, testDB := setupOtpRepoTest(t)

	challenge := newChallenge("ayesha@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, otpRepo.Upsert(challenge))

	// Wrong code, wrong purpose
	_, err := otpRepo.ConsumeMatching("ayesha@example.com", model.PurposeCookSignup, "999999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = otpRepo.ConsumeMatching("ayesha@example.com", model.PurposeCustomerSignup, "111111")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	consumed, err := otpRepo.ConsumeMatching("ayesha@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, err)
	assert.True(t, consumed.IsVerified)
	assert.Equal(t, `{"name":"Ayesha"}`, consumed.TempData)

	// The code is single use
	_, err = otpRepo.ConsumeMatching("ayesha@example.com", model.PurposeCookSignup, "111111")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// An expired challenge is returned unconsumed so the caller can report
	// expiry instead of a bare mismatch
	expired := newChallenge("bilal@example.com", model.PurposeCustomerSignup, "555555")
	require.NoError(t, otpRepo.Upsert(expired))
	require.NoError(t, testDB.Model(&model.OtpChallenge{}).
		Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	stale, err := otpRepo.ConsumeMatching("bilal@example.com", model.PurposeCustomerSignup, "555555")
	require.NoError(t, err)
	assert.False(t, stale.IsVerified)
	assert.True(t, stale.IsExpired())
}

func TestOtpRepository_DeleteExpiredBefore(t *testing.T) {
	otpRepo, testDB := setupOtpRepoTest(t)

	fresh := newChallenge("fresh@example.com", model.PurposeCookSignup, "111111")
	require.NoError(t, otpRepo.Upsert(fresh))

	stale := newChallenge("stale@example.com", model.PurposeCookSignup, "222222")
	require.NoError(t, otpRepo.Upsert(stale))
	require.NoError(t, testDB.Model(&model.OtpChallenge{}).
		Where("id = ?", stale.ID).
		Update("expires_at", time.Now().Add(-48*time.Hour)).Error)

	deleted, err := otpRepo.DeleteExpiredBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	testDB.Model(&model.OtpChallenge{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
