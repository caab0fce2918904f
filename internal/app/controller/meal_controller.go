package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	apperrors "github.com/khanaghar/khanaghar-backend/internal/errors"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
)

type MealController struct {
	mealService service.MealService
}

func NewMealController(mealService service.MealService) *MealController {
	return &MealController{
		mealService: mealService,
	}
}

type MealRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	ImageURL    string  `json:"image_url"`
	Available   *bool   `json:"available"`
}

func mealIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid meal ID")
		return 0, false
	}
	return uint(id), true
}

func respondMealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMealNotFound):
		apperrors.NotFound(c, apperrors.MealNotFound, "Meal not found")
	case errors.Is(err, service.ErrMealNotOwner):
		apperrors.Forbidden(c, "This meal belongs to another cook")
	case errors.Is(err, service.ErrInvalidPrice):
		apperrors.BadRequest(c, apperrors.MealInvalidPrice, "Price must be greater than zero")
	case errors.Is(err, service.ErrCookNotVerified):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzNotVerified, "Complete document verification before managing meals")
	case errors.Is(err, service.ErrCookSuspended):
		apperrors.AccountSuspended(c, "")
	case errors.Is(err, service.ErrCookNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Cook not found")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "meal")
	}
}

// CreateMeal adds a meal to the cook's menu
// POST /api/v1/meals
func (ctrl *MealController) CreateMeal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	meal, err := ctrl.mealService.CreateMeal(cookID, service.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	})
	if err != nil {
		respondMealError(c, err)
		return
	}

	log.Info("Meal created", map[string]interface{}{
		"meal_id": meal.ID,
		"cook_id": cookID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Meal created",
		"meal":    meal,
	})
}

// UpdateMeal edits one of the cook's meals
// PUT /api/v1/meals/:id
func (ctrl *MealController) UpdateMeal(c *gin.Context) {
	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	meal, err := ctrl.mealService.UpdateMeal(cookID, mealID, service.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	})
	if err != nil {
		respondMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Meal updated",
		"meal":    meal,
	})
}

// DeleteMeal removes one of the cook's meals
// DELETE /api/v1/meals/:id
func (ctrl *MealController) DeleteMeal(c *gin.Context) {
	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.mealService.DeleteMeal(cookID, mealID); err != nil {
		respondMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Meal deleted",
	})
}

// GetMeal returns one meal
// GET /api/v1/meals/:id
func (ctrl *MealController) GetMeal(c *gin.Context) {
	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	meal, err := ctrl.mealService.GetMeal(mealID)
	if err != nil {
		respondMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meal": meal,
	})
}

// ListMeals returns available meals, optionally filtered by category
// GET /api/v1/meals
func (ctrl *MealController) ListMeals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	meals, err := ctrl.mealService.ListMeals(c.Query("category"))
	if err != nil {
		log.Error("Failed to list meals", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list meals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meals": meals,
		"count": len(meals),
	})
}

// ListMyMeals returns the requesting cook's menu
// GET /api/v1/meals/mine
func (ctrl *MealController) ListMyMeals(c *gin.Context) {
	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	meals, err := ctrl.mealService.ListCookMeals(cookID)
	if err != nil {
		respondMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meals": meals,
		"count": len(meals),
	})
}
