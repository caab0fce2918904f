package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/internal/app/controller"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
	"github.com/khanaghar/khanaghar-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

// fakeNotifier captures outbound mail instead of sending it
type fakeNotifier struct {
	mu        sync.Mutex
	lastOtp   string
	approved  []string
	rejected  []string
	statusMsg []string
}

func (f *fakeNotifier) SendOtp(to, code string, validFor time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOtp = code
	return nil
}

func (f *fakeNotifier) SendVerificationApproved(to, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, to)
	return nil
}

func (f *fakeNotifier) SendVerificationRejected(to, name string, rejections map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, to)
	return nil
}

func (f *fakeNotifier) SendAccountStatusChanged(to, name, status, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusMsg = append(f.statusMsg, status)
	return nil
}

func (f *fakeNotifier) LastOtp() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOtp
}

type TestServer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Notifier *fakeNotifier
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	otpRepo := repository.NewOtpRepository(testDB)
	docRepo := repository.NewDocumentRepository(testDB)
	mealRepo := repository.NewMealRepository(testDB)

	notifier := &fakeNotifier{}

	authService := service.NewAuthService(
		userRepo,
		otpRepo,
		notifier,
		nil, // no deliverability check in tests
		nil, // no token blacklist in tests
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
		10*time.Minute,
		5*time.Minute,
	)
	documentService := service.NewDocumentService(docRepo, userRepo, notifier)
	statusService := service.NewAccountStatusService(userRepo, notifier)
	mealService := service.NewMealService(mealRepo, userRepo)
	reportService := service.NewReportService(userRepo)

	authController := controller.NewAuthController(authService)
	documentController := controller.NewDocumentController(documentService)
	adminController := controller.NewAdminController(statusService, reportService)
	mealController := controller.NewMealController(mealService)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, nil)

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup/request", authController.RequestSignup)
		auth.POST("/signup/resend", authController.ResendSignup)
		auth.POST("/signup/verify", authController.VerifySignup)
		auth.POST("/signin", authController.SignIn)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	documents := router.Group("/api/v1/documents")
	documents.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("cook"))
	{
		documents.POST("/submit", documentController.SubmitDocuments)
		documents.GET("/me", documentController.GetMyPacket)
	}

	cookDocs := router.Group("/api/v1/cook-documents")
	cookDocs.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		cookDocs.GET("/submitted", documentController.ListSubmittedCooks)
		cookDocs.GET("/:cookId", documentController.GetCookPacket)
		cookDocs.PATCH("/:cookId/approve", documentController.ApproveDocument)
		cookDocs.PATCH("/:cookId/reject", documentController.RejectDocument)
		cookDocs.PATCH("/:cookId/approve-all", documentController.ApproveAllDocuments)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		admin.PATCH("/accounts/:id/status", adminController.UpdateAccountStatus)
	}

	meals := router.Group("/api/v1/meals")
	{
		meals.GET("", mealController.ListMeals)
		meals.POST("",
			authMiddleware.Authenticate(),
			authMiddleware.RequireRole("cook"),
			mealController.CreateMeal,
		)
	}

	return &TestServer{
		Router:   router,
		DB:       testDB,
		Notifier: notifier,
	}
}

func (ts *TestServer) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) createAdmin(t *testing.T) (uint, string) {
	t.Helper()

	admin := &model.User{
		Email:        "admin@khanaghar.pk",
		PasswordHash: "hash",
		Name:         "Admin",
		Street:       "I.I. Chundrigar Road",
		Role:         model.RoleAdmin,
		Status:       model.AccountActive,
	}
	require.NoError(t, ts.DB.Create(admin).Error)

	tokens, err := util.GenerateTokenPair(admin.ID, admin.Email, string(model.RoleAdmin), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return admin.ID, tokens.AccessToken
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCookVerificationJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// 1. Cook requests signup; account must not exist yet
	w := ts.do(t, "POST", "/api/v1/auth/signup/request", "", map[string]string{
		"name":     "Ayesha Khan",
		"email":    "ayesha@example.com",
		"phone":    "0300-1234567",
		"password": "password123",
		"role":     "cook",
		"street":   "Shahrah-e-Faisal",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	ts.DB.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// 2. Verify the OTP; account is created with the document-upload route
	w = ts.do(t, "POST", "/api/v1/auth/signup/verify", "", map[string]string{
		"email":    "ayesha@example.com",
		"otp_code": ts.Notifier.LastOtp(),
		"role":     "cook",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "not_started", user["verification_status"])
	assert.Equal(t, "document-upload", user["landing_route"])

	tokens := resp["tokens"].(map[string]interface{})
	cookToken := tokens["access_token"].(string)
	cookID := uint(user["id"].(float64))

	// 3. Meal creation is gated until verification completes
	w = ts.do(t, "POST", "/api/v1/meals", cookToken, map[string]interface{}{
		"name":     "Chicken Biryani",
		"price":    450.0,
		"category": "rice",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 4. Cook submits the document packet
	w = ts.do(t, "POST", "/api/v1/documents/submit", cookToken, map[string]interface{}{
		"cnic_front_url":     "https://cdn.example.com/cnic-front.jpg",
		"cnic_back_url":      "https://cdn.example.com/cnic-back.jpg",
		"kitchen_photo_urls": []string{"https://cdn.example.com/kitchen-1.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp = decodeBody(t, w)
	packet := resp["packet"].(map[string]interface{})
	assert.Equal(t, "pending", packet["verification_status"])

	// 5. Admin sees the cook in the review queue
	adminID, adminToken := ts.createAdmin(t)

	w = ts.do(t, "GET", "/api/v1/cook-documents/submitted", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody(t, w)
	assert.Equal(t, float64(1), resp["count"])

	// 6. Rejecting one document flips the aggregate to rejected and notifies
	w = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/cook-documents/%d/reject", cookID), adminToken, map[string]interface{}{
		"field":  "cnic_front",
		"reason": "Image is blurry",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody(t, w)
	packet = resp["packet"].(map[string]interface{})
	assert.Equal(t, "rejected", packet["verification_status"])
	assert.Len(t, ts.Notifier.rejected, 1)

	w = ts.do(t, "GET", "/api/v1/auth/me", cookToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody(t, w)
	user = resp["user"].(map[string]interface{})
	assert.Equal(t, "status-page", user["landing_route"])

	// 7. Resubmission returns the packet to pending
	w = ts.do(t, "POST", "/api/v1/documents/submit", cookToken, map[string]interface{}{
		"cnic_front_url":     "https://cdn.example.com/cnic-front-2.jpg",
		"cnic_back_url":      "https://cdn.example.com/cnic-back.jpg",
		"kitchen_photo_urls": []string{"https://cdn.example.com/kitchen-1.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decodeBody(t, w)
	packet = resp["packet"].(map[string]interface{})
	assert.Equal(t, "pending", packet["verification_status"])

	// 8. Bulk approval completes verification
	w = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/cook-documents/%d/approve-all", cookID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody(t, w)
	packet = resp["packet"].(map[string]interface{})
	assert.Equal(t, "approved", packet["verification_status"])
	assert.Equal(t, float64(adminID), packet["verified_by"])
	assert.Len(t, ts.Notifier.approved, 1)

	w = ts.do(t, "GET", "/api/v1/auth/me", cookToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody(t, w)
	user = resp["user"].(map[string]interface{})
	assert.Equal(t, "full-dashboard", user["landing_route"])

	// 9. The meal gate opens once verified
	w = ts.do(t, "POST", "/api/v1/meals", cookToken, map[string]interface{}{
		"name":     "Chicken Biryani",
		"price":    450.0,
		"category": "rice",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// 10. Suspension blocks sign-in with the stored reason
	w = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/admin/accounts/%d/status", cookID), adminToken, map[string]string{
		"status": "suspended",
		"reason": "Hygiene complaint under investigation",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", "/api/v1/auth/signin", "", map[string]string{
		"email":    "ayesha@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp = decodeBody(t, w)
	assert.Contains(t, resp["reason"], "Hygiene")
}

func TestSignupOtpFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	signup := map[string]string{
		"name":     "Bilal Ahmed",
		"email":    "bilal@example.com",
		"phone":    "0301-7654321",
		"password": "password123",
		"role":     "customer",
		"street":   "Tariq Road",
	}

	w := ts.do(t, "POST", "/api/v1/auth/signup/request", "", signup)
	require.Equal(t, http.StatusOK, w.Code)
	firstCode := ts.Notifier.LastOtp()

	// Resend replaces the code; the old one stops working
	w = ts.do(t, "POST", "/api/v1/auth/signup/resend", "", map[string]string{
		"email": "bilal@example.com",
		"role":  "customer",
	})
	require.Equal(t, http.StatusOK, w.Code)
	secondCode := ts.Notifier.LastOtp()

	if firstCode != secondCode {
		w = ts.do(t, "POST", "/api/v1/auth/signup/verify", "", map[string]string{
			"email":    "bilal@example.com",
			"otp_code": firstCode,
			"role":     "customer",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w = ts.do(t, "POST", "/api/v1/auth/signup/verify", "", map[string]string{
		"email":    "bilal@example.com",
		"otp_code": secondCode,
		"role":     "customer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The consumed challenge cannot create a second account
	w = ts.do(t, "POST", "/api/v1/auth/signup/verify", "", map[string]string{
		"email":    "bilal@example.com",
		"otp_code": secondCode,
		"role":     "customer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Resend for an unknown email reveals nothing to enumerate
	w = ts.do(t, "POST", "/api/v1/auth/signup/resend", "", map[string]string{
		"email": "nobody@example.com",
		"role":  "customer",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/documents/me",
		"/api/v1/cook-documents/submitted",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			req := httptest.NewRequest("GET", route, nil)
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// A cook token cannot reach admin review routes
	cook := &model.User{
		Email:        "cook@example.com",
		PasswordHash: "hash",
		Name:         "Cook",
		Street:       "Khayaban-e-Ittehad",
		Role:         model.RoleCook,
		Status:       model.AccountActive,
	}
	require.NoError(t, ts.DB.Create(cook).Error)

	tokens, err := util.GenerateTokenPair(cook.ID, cook.Email, string(model.RoleCook), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	w := ts.do(t, "GET", "/api/v1/cook-documents/submitted", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
