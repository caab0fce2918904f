package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	apperrors "github.com/khanaghar/khanaghar-backend/internal/errors"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
)

type AdminController struct {
	statusService service.AccountStatusService
	reportService service.ReportService
}

func NewAdminController(statusService service.AccountStatusService, reportService service.ReportService) *AdminController {
	return &AdminController{
		statusService: statusService,
		reportService: reportService,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
	Reason string `json:"reason"`
}

// UpdateAccountStatus suspends or reactivates an account
// PATCH /api/v1/admin/accounts/:id/status
func (ctrl *AdminController) UpdateAccountStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accountID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid account ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	var user *model.User
	if req.Status == "suspended" {
		user, err = ctrl.statusService.Suspend(uint(accountID), req.Reason)
	} else {
		user, err = ctrl.statusService.Activate(uint(accountID))
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			apperrors.BadRequest(c, apperrors.AccountReasonRequired, "A suspension reason is required")
		case errors.Is(err, service.ErrAlreadySuspended):
			apperrors.Conflict(c, apperrors.AccountAlreadySuspended, "This account is already suspended")
		case errors.Is(err, service.ErrAlreadyActive):
			apperrors.Conflict(c, apperrors.AccountAlreadyActive, "This account is already active")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Account not found")
		default:
			log.Error("Account status update failed", err, map[string]interface{}{
				"account_id": accountID,
				"status":     req.Status,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update account status")
		}
		return
	}

	log.Info("Account status updated", map[string]interface{}{
		"account_id": accountID,
		"status":     req.Status,
		"reason":     req.Reason,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Account status updated",
		"user":    userView(user),
	})
}

// ExportVerificationReport streams the cook verification report workbook
// GET /api/v1/admin/reports/verification
func (ctrl *AdminController) ExportVerificationReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	buf, err := ctrl.reportService.ExportVerificationReport()
	if err != nil {
		log.Error("Report export failed", err, nil)
		apperrors.InternalError(c, "Could not generate the report")
		return
	}

	filename := fmt.Sprintf("cook-verification-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
