package service

import (
	"errors"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMealNotFound    = errors.New("meal not found")
	ErrMealNotOwner    = errors.New("meal belongs to another cook")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrCookNotVerified = errors.New("cook is not verified yet")
	ErrCookSuspended   = errors.New("cook account is suspended")
)

type MealInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
	Available   *bool
}

type MealService interface {
	CreateMeal(cookID uint, input MealInput) (*model.Meal, error)
	UpdateMeal(cookID, mealID uint, input MealInput) (*model.Meal, error)
	DeleteMeal(cookID, mealID uint) error
	GetMeal(id uint) (*model.Meal, error)
	ListMeals(category string) ([]model.Meal, error)
	ListCookMeals(cookID uint) ([]model.Meal, error)
}

type mealService struct {
	mealRepo repository.MealRepository
	userRepo repository.UserRepository
}

func NewMealService(mealRepo repository.MealRepository, userRepo repository.UserRepository) MealService {
	return &mealService{
		mealRepo: mealRepo,
		userRepo: userRepo,
	}
}

// requireSellingCook enforces both gates: the account must be active and the
// cook's aggregate verification status must be approved.
func (s *mealService) requireSellingCook(cookID uint) (*model.User, error) {
	cook, err := s.userRepo.FindByID(cookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCookNotFound
		}
		return nil, err
	}
	if cook.Role != model.RoleCook {
		return nil, ErrCookNotFound
	}
	if cook.Status == model.AccountSuspended {
		return nil, ErrCookSuspended
	}
	if cook.VerificationStatus != model.VerificationApproved {
		return nil, ErrCookNotVerified
	}
	return cook, nil
}

func (s *mealService) CreateMeal(cookID uint, input MealInput) (*model.Meal, error) {
	logger.Info("Creating meal", map[string]interface{}{
		"cook_id": cookID,
		"name":    input.Name,
	})

	if _, err := s.requireSellingCook(cookID); err != nil {
		logger.Warn("Meal creation blocked", map[string]interface{}{
			"cook_id": cookID,
			"reason":  err.Error(),
		})
		return nil, err
	}

	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	meal := &model.Meal{
		CookID:      cookID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Available:   true,
	}
	if input.Available != nil {
		meal.Available = *input.Available
	}

	if err := s.mealRepo.Create(meal); err != nil {
		return nil, err
	}

	logger.Info("Meal created", map[string]interface{}{
		"meal_id": meal.ID,
		"cook_id": cookID,
	})
	return meal, nil
}

func (s *mealService) UpdateMeal(cookID, mealID uint, input MealInput) (*model.Meal, error) {
	if _, err := s.requireSellingCook(cookID); err != nil {
		return nil, err
	}

	meal, err := s.mealRepo.FindByID(mealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	if meal.CookID != cookID {
		logger.Warn("Meal update rejected: not the owner", map[string]interface{}{
			"meal_id": mealID,
			"cook_id": cookID,
		})
		return nil, ErrMealNotOwner
	}

	if input.Name != "" {
		meal.Name = input.Name
	}
	if input.Description != "" {
		meal.Description = input.Description
	}
	if input.Price != 0 {
		if input.Price < 0 {
			return nil, ErrInvalidPrice
		}
		meal.Price = input.Price
	}
	if input.Category != "" {
		meal.Category = input.Category
	}
	if input.ImageURL != "" {
		meal.ImageURL = input.ImageURL
	}
	if input.Available != nil {
		meal.Available = *input.Available
	}

	if err := s.mealRepo.Update(meal); err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *mealService) DeleteMeal(cookID, mealID uint) error {
	meal, err := s.mealRepo.FindByID(mealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMealNotFound
		}
		return err
	}
	if meal.CookID != cookID {
		return ErrMealNotOwner
	}

	return s.mealRepo.Delete(mealID)
}

func (s *mealService) GetMeal(id uint) (*model.Meal, error) {
	meal, err := s.mealRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

func (s *mealService) ListMeals(category string) ([]model.Meal, error) {
	return s.mealRepo.List(category, true)
}

func (s *mealService) ListCookMeals(cookID uint) ([]model.Meal, error) {
	return s.mealRepo.FindByCookID(cookID)
}
