package service

import (
	"errors"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReasonRequired   = errors.New("a suspension reason is required")
	ErrAlreadySuspended = errors.New("account is already suspended")
	ErrAlreadyActive    = errors.New("account is already active")
)

// AccountStatusService is the active/suspended gate. It is orthogonal to a
// cook's verification status: a suspended cook can still be "approved", and
// both gates must pass for protected feature access.
type AccountStatusService interface {
	Suspend(accountID uint, reason string) (*model.User, error)
	Activate(accountID uint) (*model.User, error)
}

type accountStatusService struct {
	userRepo repository.UserRepository
	notifier Notifier
}

func NewAccountStatusService(userRepo repository.UserRepository, notifier Notifier) AccountStatusService {
	return &accountStatusService{
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *accountStatusService) Suspend(accountID uint, reason string) (*model.User, error) {
	logger.Info("Suspending account", map[string]interface{}{
		"account_id": accountID,
	})

	if reason == "" {
		return nil, ErrReasonRequired
	}

	user, err := s.userRepo.FindByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status == model.AccountSuspended {
		logger.Warn("Suspend rejected: already suspended", map[string]interface{}{
			"account_id": accountID,
		})
		return nil, ErrAlreadySuspended
	}

	if err := s.userRepo.UpdateAccountStatus(accountID, model.AccountSuspended, reason); err != nil {
		logger.Error("Failed to suspend account", err, map[string]interface{}{
			"account_id": accountID,
		})
		return nil, err
	}
	user.Status = model.AccountSuspended
	user.StatusReason = reason

	// Best-effort notification
	if err := s.notifier.SendAccountStatusChanged(user.Email, user.Name, string(model.AccountSuspended), reason); err != nil {
		logger.Error("Failed to send suspension notification", err, map[string]interface{}{
			"account_id": accountID,
		})
	}

	logger.Info("Account suspended", map[string]interface{}{
		"account_id": accountID,
		"reason":     reason,
	})
	return user, nil
}

func (s *accountStatusService) Activate(accountID uint) (*model.User, error) {
	logger.Info("Activating account", map[string]interface{}{
		"account_id": accountID,
	})

	user, err := s.userRepo.FindByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status == model.AccountActive {
		logger.Warn("Activate rejected: already active", map[string]interface{}{
			"account_id": accountID,
		})
		return nil, ErrAlreadyActive
	}

	// Reactivation clears the stored reason
	if err := s.userRepo.UpdateAccountStatus(accountID, model.AccountActive, ""); err != nil {
		logger.Error("Failed to activate account", err, map[string]interface{}{
			"account_id": accountID,
		})
		return nil, err
	}
	user.Status = model.AccountActive
	user.StatusReason = ""

	if err := s.notifier.SendAccountStatusChanged(user.Email, user.Name, string(model.AccountActive), ""); err != nil {
		logger.Error("Failed to send reactivation notification", err, map[string]interface{}{
			"account_id": accountID,
		})
	}

	logger.Info("Account activated", map[string]interface{}{
		"account_id": accountID,
	})
	return user, nil
}
