package service

import (
	"testing"

	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMealServiceTest(t *testing.T) (MealService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mealRepo := repository.NewMealRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	return NewMealService(mealRepo, userRepo), testDB
}

func createVerifiedCook(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	cook := createTestCook(t, testDB, email)
	require.NoError(t, testDB.Model(cook).
		Update("verification_status", model.VerificationApproved).Error)
	cook.VerificationStatus = model.VerificationApproved
	return cook
}

func biryaniInput() MealInput {
	return MealInput{
		Name:     "Chicken Biryani",
		Price:    450,
		Category: "rice",
	}
}

func TestMealService_CreateMeal_Gates(t *testing.T) {
	mealService, testDB := setupMealServiceTest(t)

	// Verification gate: unverified cooks cannot sell
	pending := createTestCook(t, testDB, "pending@example.com")
	_, err := mealService.CreateMeal(pending.ID, biryaniInput())
	assert.ErrorIs(t, err, ErrCookNotVerified)

	// Account gate: suspension closes an otherwise verified cook
	suspended := createVerifiedCook(t, testDB, "suspended@example.com")
	require.NoError(t, testDB.Model(suspended).
		Update("status", model.AccountSuspended).Error)
	_, err = mealService.CreateMeal(suspended.ID, biryaniInput())
	assert.ErrorIs(t, err, ErrCookSuspended)

	// Both gates open
	cook := createVerifiedCook(t, testDB, "ayesha@example.com")
	meal, err := mealService.CreateMeal(cook.ID, biryaniInput())
	require.NoError(t, err)
	assert.Equal(t, cook.ID, meal.CookID)
	assert.True(t, meal.Available)

	_, err = mealService.CreateMeal(cook.ID, MealInput{Name: "Free Biryani", Category: "rice"})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestMealService_UpdateAndDelete_Ownership(t *testing.T) {
	mealService, testDB := setupMealServiceTest(t)

	owner := createVerifiedCook(t, testDB, "owner@example.com")
	other := createVerifiedCook(t, testDB, "other@example.com")

	meal, err := mealService.CreateMeal(owner.ID, biryaniInput())
	require.NoError(t, err)

	_, err = mealService.UpdateMeal(other.ID, meal.ID, MealInput{Name: "Hijacked"})
	assert.ErrorIs(t, err, ErrMealNotOwner)

	updated, err := mealService.UpdateMeal(owner.ID, meal.ID, MealInput{Price: 500})
	require.NoError(t, err)
	assert.Equal(t, float64(500), updated.Price)
	assert.Equal(t, "Chicken Biryani", updated.Name) // untouched fields survive

	err = mealService.DeleteMeal(other.ID, meal.ID)
	assert.ErrorIs(t, err, ErrMealNotOwner)

	require.NoError(t, mealService.DeleteMeal(owner.ID, meal.ID))

	_, err = mealService.GetMeal(meal.ID)
	assert.ErrorIs(t, err, ErrMealNotFound)
}

func TestMealService_ListMeals(t *testing.T) {
	mealService, testDB := setupMealServiceTest(t)
	cook := createVerifiedCook(t, testDB, "ayesha@example.com")

	_, err := mealService.CreateMeal(cook.ID, biryaniInput())
	require.NoError(t, err)
	_, err = mealService.CreateMeal(cook.ID, MealInput{Name: "Chapli Kebab", Price: 300, Category: "bbq"})
	require.NoError(t, err)

	all, err := mealService.ListMeals("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bbq, err := mealService.ListMeals("bbq")
	require.NoError(t, err)
	require.Len(t, bbq, 1)
	assert.Equal(t, "Chapli Kebab", bbq[0].Name)

	mine, err := mealService.ListCookMeals(cook.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
