package repository

import (
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindCooksByVerificationStatus(status model.VerificationStatus) ([]model.User, error)
	ListCooks() ([]model.User, error)
	Update(user *model.User) error
	UpdateVerificationStatus(cookID uint, status model.VerificationStatus) error
	UpdateAccountStatus(id uint, status model.AccountStatus, reason string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindCooksByVerificationStatus(status model.VerificationStatus) ([]model.User, error) {
	var cooks []model.User
	err := r.db.
		Where("role = ? AND verification_status = ?", model.RoleCook, status).
		Order("updated_at DESC").
		Find(&cooks).Error
	if err != nil {
		logger.Error("Failed to find cooks by verification status", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return cooks, nil
}

func (r *userRepository) ListCooks() ([]model.User, error) {
	var cooks []model.User
	err := r.db.
		Where("role = ?", model.RoleCook).
		Order("created_at ASC").
		Find(&cooks).Error
	if err != nil {
		logger.Error("Failed to list cooks", err, nil)
		return nil, err
	}
	return cooks, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) UpdateVerificationStatus(cookID uint, status model.VerificationStatus) error {
	logger.Debug("Updating cook verification status", map[string]interface{}{
		"cook_id": cookID,
		"status":  status,
	})

	result := r.db.Model(&model.User{}).
		Where("id = ? AND role = ?", cookID, model.RoleCook).
		Update("verification_status", status)
	if result.Error != nil {
		logger.Error("Failed to update cook verification status", result.Error, map[string]interface{}{
			"cook_id": cookID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateAccountStatus(id uint, status model.AccountStatus, reason string) error {
	logger.Debug("Updating account status", map[string]interface{}{
		"user_id": id,
		"status":  status,
	})

	result := r.db.Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"status_reason": reason,
		})
	if result.Error != nil {
		logger.Error("Failed to update account status", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
