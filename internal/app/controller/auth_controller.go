package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	apperrors "github.com/khanaghar/khanaghar-backend/internal/errors"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RequestSignupRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required,oneof=customer cook"`
	Street     string `json:"street" binding:"required"`
	HouseNo    string `json:"house_no"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type ResendSignupRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=customer cook"`
}

type VerifySignupRequest struct {
	Email   string `json:"email" binding:"required,email"`
	OtpCode string `json:"otp_code" binding:"required,len=6"`
	Role    string `json:"role" binding:"required,oneof=customer cook"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminVerifyRequest struct {
	Email   string `json:"email" binding:"required,email"`
	OtpCode string `json:"otp_code" binding:"required,len=6"`
}

// userView sanitizes an account for responses; the password hash never leaves
// the service layer anyway but the shape here is explicit.
func userView(user *model.User) gin.H {
	view := gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"phone":       user.Phone,
		"street":      user.Street,
		"house_no":    user.HouseNo,
		"city":        user.City,
		"postal_code": user.PostalCode,
		"role":        user.Role,
		"status":      user.Status,
	}
	if user.Role == model.RoleCook {
		view["verification_status"] = user.VerificationStatus
		view["service_status"] = user.ServiceStatus
		view["landing_route"] = model.LandingRoute(user.VerificationStatus)
	}
	return view
}

// RequestSignup starts the OTP-gated signup flow
// POST /api/v1/auth/signup/request
func (ctrl *AuthController) RequestSignup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RequestSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	payload := service.SignupPayload{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		Street:     req.Street,
		HouseNo:    req.HouseNo,
		City:       req.City,
		PostalCode: req.PostalCode,
	}

	err := ctrl.authService.RequestSignup(payload, model.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInvalid):
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Email address is not valid")
		case errors.Is(err, service.ErrEmailUndeliverable):
			apperrors.BadRequest(c, apperrors.AuthEmailUndeliverable, "This email address cannot receive mail")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email address is already registered")
		case errors.Is(err, service.ErrOtpDeliveryFailed):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.OtpDeliveryFailed, "We could not deliver your verification code. Please try again")
		default:
			log.Error("Signup request failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "signup request")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A verification code has been sent to your email",
	})
}

// ResendSignup refreshes the pending signup's OTP code
// POST /api/v1/auth/signup/resend
func (ctrl *AuthController) ResendSignup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResendSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	err := ctrl.authService.ResendSignup(req.Email, model.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingSignup):
			apperrors.NotFound(c, apperrors.OtpNoPendingSignup, "No pending signup found for this email")
		case errors.Is(err, service.ErrOtpDeliveryFailed):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.OtpDeliveryFailed, "We could not deliver your verification code. Please try again")
		default:
			log.Error("OTP resend failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "resend otp")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A new verification code has been sent to your email",
	})
}

// VerifySignup consumes the OTP and creates the account
// POST /api/v1/auth/signup/verify
func (ctrl *AuthController) VerifySignup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifySignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	user, tokens, err := ctrl.authService.VerifySignupOtp(req.Email, req.OtpCode, model.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOtp):
			apperrors.BadRequest(c, apperrors.OtpInvalid, "Invalid OTP")
		case errors.Is(err, service.ErrOtpExpired):
			apperrors.BadRequest(c, apperrors.OtpExpired, "Your verification code has expired. Please request a new one")
		default:
			log.Error("Signup verification failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verify signup")
		}
		return
	}

	log.Info("Account created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    userView(user),
		"tokens":  tokens,
	})
}

// SignIn handles credential sign-in
// POST /api/v1/auth/signin
func (ctrl *AuthController) SignIn(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	user, tokens, err := ctrl.authService.SignIn(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.Unauthorized(c, "Email or password is incorrect")
		case errors.Is(err, service.ErrAccountSuspended):
			reason := ""
			if user != nil {
				reason = user.StatusReason
			}
			apperrors.AccountSuspended(c, reason)
		default:
			log.Error("Sign-in failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "sign in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"user":    userView(user),
		"tokens":  tokens,
	})
}

// SignOut revokes the presented token. Always succeeds, even without an
// active session, so defensive sign-out from front ends never errors.
// POST /api/v1/auth/signout
func (ctrl *AuthController) SignOut(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := ""
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	if err := ctrl.authService.SignOut(c.Request.Context(), token); err != nil {
		log.Error("Sign-out failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}

// RequestAdminSignIn starts the two-step admin sign-in
// POST /api/v1/auth/admin/signin/request
func (ctrl *AuthController) RequestAdminSignIn(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	err := ctrl.authService.RequestAdminSignIn(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.Unauthorized(c, "Email or password is incorrect")
		case errors.Is(err, service.ErrAccountSuspended):
			apperrors.AccountSuspended(c, "")
		case errors.Is(err, service.ErrOtpDeliveryFailed):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.OtpDeliveryFailed, "We could not deliver your verification code. Please try again")
		default:
			log.Error("Admin sign-in request failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "admin sign in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A verification code has been sent to your email",
	})
}

// VerifyAdminSignIn consumes the admin OTP and issues tokens
// POST /api/v1/auth/admin/signin/verify
func (ctrl *AuthController) VerifyAdminSignIn(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	user, tokens, err := ctrl.authService.VerifyAdminSignIn(req.Email, req.OtpCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOtp):
			apperrors.BadRequest(c, apperrors.OtpInvalid, "Invalid OTP")
		case errors.Is(err, service.ErrOtpExpired):
			apperrors.BadRequest(c, apperrors.OtpExpired, "Your verification code has expired. Please request a new one")
		default:
			log.Error("Admin sign-in verification failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verify admin sign in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"user":    userView(user),
		"tokens":  tokens,
	})
}

// GetMe returns the authenticated account
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
			return
		}
		log.Error("Failed to fetch current account", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userView(user),
	})
}
