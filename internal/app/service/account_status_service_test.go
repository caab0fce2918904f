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

func setupAccountStatusTest(t *testing.T) (AccountStatusService, *stubNotifier, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	notifier := &stubNotifier{}

	return NewAccountStatusService(userRepo, notifier), notifier, testDB
}

func TestAccountStatusService_Suspend(t *testing.T) {
	statusService, notifier, testDB := setupAccountStatusTest(t)
	cook := createTestCook(t, testDB, "ayesha@example.com")

	// Suspension must carry a reason
	_, err := statusService.Suspend(cook.ID, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	user, err := statusService.Suspend(cook.ID, "Hygiene complaint under investigation")
	require.NoError(t, err)
	assert.Equal(t, model.AccountSuspended, user.Status)
	assert.Equal(t, "Hygiene complaint under investigation", user.StatusReason)
	assert.Equal(t, []string{"suspended"}, notifier.statusChanges)

	// Suspending twice is a conflict
	_, err = statusService.Suspend(cook.ID, "Second reason")
	assert.ErrorIs(t, err, ErrAlreadySuspended)

	_, err = statusService.Suspend(9999, "Whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAccountStatusService_Activate(t *testing.T) {
	statusService, notifier, testDB := setupAccountStatusTest(t)
	cook := createTestCook(t, testDB, "ayesha@example.com")

	// Activating an active account is a conflict
	_, err := statusService.Activate(cook.ID)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	_, err = statusService.Suspend(cook.ID, "Hygiene complaint")
	require.NoError(t, err)

	user, err := statusService.Activate(cook.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccountActive, user.Status)
	assert.Empty(t, user.StatusReason) // reactivation clears the reason

	reloaded := reloadCook(t, testDB, cook.ID)
	assert.Equal(t, model.AccountActive, reloaded.Status)
	assert.Empty(t, reloaded.StatusReason)

	assert.Equal(t, []string{"suspended", "active"}, notifier.statusChanges)
}

func TestAccountStatusService_NotifierFailureIsSwallowed(t *testing.T) {
	statusService, notifier, testDB := setupAccountStatusTest(t)
	cook := createTestCook(t, testDB, "ayesha@example.com")
	notifier.failStatus = true

	// The status change sticks even when the email cannot be sent
	user, err := statusService.Suspend(cook.ID, "Hygiene complaint")
	require.NoError(t, err)
	assert.Equal(t, model.AccountSuspended, user.Status)
	assert.Equal(t, model.AccountSuspended, reloadCook(t, testDB, cook.ID).Status)
}
