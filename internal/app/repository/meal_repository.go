package repository

import (
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

type MealRepository interface {
	Create(meal *model.Meal) error
	FindByID(id uint) (*model.Meal, error)
	List(category string, availableOnly bool) ([]model.Meal, error)
	FindByCookID(cookID uint) ([]model.Meal, error)
	Update(meal *model.Meal) error
	Delete(id uint) error
}

type mealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func (r *mealRepository) Create(meal *model.Meal) error {
	if err := r.db.Create(meal).Error; err != nil {
		logger.Error("Failed to create meal", err, map[string]interface{}{
			"cook_id": meal.CookID,
		})
		return err
	}
	return nil
}

func (r *mealRepository) FindByID(id uint) (*model.Meal, error) {
	var meal model.Meal
	if err := r.db.First(&meal, id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *mealRepository) List(category string, availableOnly bool) ([]model.Meal, error) {
	query := r.db.Model(&model.Meal{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if availableOnly {
		query = query.Where("available = ?", true)
	}

	var meals []model.Meal
	if err := query.Order("created_at DESC").Find(&meals).Error; err != nil {
		logger.Error("Failed to list meals", err, nil)
		return nil, err
	}
	return meals, nil
}

func (r *mealRepository) FindByCookID(cookID uint) ([]model.Meal, error) {
	var meals []model.Meal
	err := r.db.
		Where("cook_id = ?", cookID).
		Order("created_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *mealRepository) Update(meal *model.Meal) error {
	if err := r.db.Save(meal).Error; err != nil {
		logger.Error("Failed to update meal", err, map[string]interface{}{
			"meal_id": meal.ID,
		})
		return err
	}
	return nil
}

func (r *mealRepository) Delete(id uint) error {
	return r.db.Delete(&model.Meal{}, id).Error
}
