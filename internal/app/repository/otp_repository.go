package repository

import (
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

type OtpRepository interface {
	Upsert(challenge *model.OtpChallenge) error
	FindUnconsumed(email string, purpose model.OtpPurpose) (*model.OtpChallenge, error)
	// ConsumeMatching flips IsVerified on the single challenge matching
	// (email, purpose, code, unverified) and returns it. Returns
	// gorm.ErrRecordNotFound when nothing matches, so a replayed code or a
	// concurrent double-verify loses cleanly.
	ConsumeMatching(email string, purpose model.OtpPurpose, code string) (*model.OtpChallenge, error)
	RefreshCode(id uint, code string, expiresAt time.Time) error
	Delete(id uint) error
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Upsert(challenge *model.OtpChallenge) error {
	logger.Debug("Upserting OTP challenge", map[string]interface{}{
		"email":   challenge.Email,
		"purpose": challenge.Purpose,
	})

	var existing model.OtpChallenge
	err := r.db.
		Where("email = ? AND purpose = ?", challenge.Email, challenge.Purpose).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.Create(challenge).Error
		}
		return err
	}

	// Reuse the existing row: a new request for the same (email, purpose)
	// replaces code, expiry and temp data, and resets consumption.
	existing.OtpCode = challenge.OtpCode
	existing.ExpiresAt = challenge.ExpiresAt
	existing.IsVerified = false
	existing.TempData = challenge.TempData
	if err := r.db.Save(&existing).Error; err != nil {
		logger.Error("Failed to upsert OTP challenge", err, map[string]interface{}{
			"email": challenge.Email,
		})
		return err
	}
	*challenge = existing
	return nil
}

func (r *otpRepository) FindUnconsumed(email string, purpose model.OtpPurpose) (*model.OtpChallenge, error) {
	var challenge model.OtpChallenge
	err := r.db.
		Where("email = ? AND purpose = ? AND is_verified = ?", email, purpose, false).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *otpRepository) ConsumeMatching(email string, purpose model.OtpPurpose, code string) (*model.OtpChallenge, error) {
	var challenge model.OtpChallenge
	err := r.db.
		Where("email = ? AND purpose = ? AND otp_code = ? AND is_verified = ?", email, purpose, code, false).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}

	if challenge.IsExpired() {
		// Expiry is reported without consuming the challenge; the caller
		// distinguishes expired from invalid.
		return &challenge, nil
	}

	// Conditional update: only one concurrent verify can win this race.
	result := r.db.Model(&model.OtpChallenge{}).
		Where("id = ? AND is_verified = ?", challenge.ID, false).
		Update("is_verified", true)
	if result.Error != nil {
		logger.Error("Failed to consume OTP challenge", result.Error, map[string]interface{}{
			"email": email,
		})
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	challenge.IsVerified = true
	return &challenge, nil
}

func (r *otpRepository) RefreshCode(id uint, code string, expiresAt time.Time) error {
	logger.Debug("Refreshing OTP code", map[string]interface{}{
		"challenge_id": id,
	})

	return r.db.Model(&model.OtpChallenge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp_code":   code,
			"expires_at": expiresAt,
		}).Error
}

func (r *otpRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&model.OtpChallenge{}, id).Error
}

func (r *otpRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("expires_at < ?", cutoff).
		Delete(&model.OtpChallenge{})
	if result.Error != nil {
		logger.Error("Failed to purge expired OTP challenges", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
