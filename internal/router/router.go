package router

import (
	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/config"
	"github.com/khanaghar/khanaghar-backend/internal/app/controller"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	documentController *controller.DocumentController
	adminController    *controller.AdminController
	mealController     *controller.MealController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	documentController *controller.DocumentController,
	adminController *controller.AdminController,
	mealController *controller.MealController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		documentController: documentController,
		adminController:    adminController,
		mealController:     mealController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "KhanaGhar API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup/request", r.authController.RequestSignup)
			auth.POST("/signup/resend", r.authController.ResendSignup)
			auth.POST("/signup/verify", r.authController.VerifySignup)
			auth.POST("/signin", r.authController.SignIn)
			auth.POST("/signout", r.authController.SignOut)
			auth.POST("/admin/signin/request", r.authController.RequestAdminSignIn)
			auth.POST("/admin/signin/verify", r.authController.VerifyAdminSignIn)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		documents := v1.Group("/documents")
		documents.Use(r.authMiddleware.Authenticate())
		documents.Use(r.authMiddleware.RequireRole(string(model.RoleCook)))
		{
			documents.POST("/submit", r.documentController.SubmitDocuments)
			documents.GET("/me", r.documentController.GetMyPacket)
		}

		cookDocuments := v1.Group("/cook-documents")
		cookDocuments.Use(r.authMiddleware.Authenticate())
		cookDocuments.Use(r.authMiddleware.RequireRole(string(model.RoleAdmin)))
		{
			cookDocuments.GET("/submitted", r.documentController.ListSubmittedCooks)
			cookDocuments.GET("/:cookId", r.documentController.GetCookPacket)
			cookDocuments.PATCH("/:cookId/approve", r.documentController.ApproveDocument)
			cookDocuments.PATCH("/:cookId/reject", r.documentController.RejectDocument)
			cookDocuments.PATCH("/:cookId/approve-all", r.documentController.ApproveAllDocuments)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole(string(model.RoleAdmin)))
		{
			admin.PATCH("/accounts/:id/status", r.adminController.UpdateAccountStatus)
			admin.GET("/reports/verification", r.adminController.ExportVerificationReport)
		}

		meals := v1.Group("/meals")
		{
			meals.GET("", r.mealController.ListMeals)
			meals.GET("/mine",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleCook)),
				r.mealController.ListMyMeals,
			)
			meals.GET("/:id", r.mealController.GetMeal)
			meals.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleCook)),
				r.mealController.CreateMeal,
			)
			meals.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleCook)),
				r.mealController.UpdateMeal,
			)
			meals.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleCook)),
				r.mealController.DeleteMeal,
			)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
