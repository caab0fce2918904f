package scheduler

import (
	"time"

	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Consumed and abandoned challenges are kept for a day before purging so
// support can still inspect recent signup attempts.
const otpRetention = 24 * time.Hour

// OtpPurgeScheduler periodically removes stale OTP challenges
type OtpPurgeScheduler struct {
	cron    *cron.Cron
	otpRepo repository.OtpRepository
}

func NewOtpPurgeScheduler(otpRepo repository.OtpRepository) *OtpPurgeScheduler {
	return &OtpPurgeScheduler{
		cron:    cron.New(),
		otpRepo: otpRepo,
	}
}

// Start registers the hourly purge job
func (s *OtpPurgeScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		cutoff := time.Now().Add(-otpRetention)

		deleted, err := s.otpRepo.DeleteExpiredBefore(cutoff)
		if err != nil {
			logger.Error("Failed to purge expired OTP challenges", err)
			return
		}

		if deleted > 0 {
			logger.Info("Purged expired OTP challenges", map[string]interface{}{
				"deleted": deleted,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to register OTP purge job", err)
		return err
	}

	s.cron.Start()
	logger.Info("OTP purge scheduler started (hourly)", nil)

	return nil
}

// Stop stops the scheduler
func (s *OtpPurgeScheduler) Stop() {
	s.cron.Stop()
	logger.Info("OTP purge scheduler stopped", nil)
}
