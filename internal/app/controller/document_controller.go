package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	apperrors "github.com/khanaghar/khanaghar-backend/internal/errors"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
)

type DocumentController struct {
	docService service.DocumentService
}

func NewDocumentController(docService service.DocumentService) *DocumentController {
	return &DocumentController{
		docService: docService,
	}
}

type SubmitDocumentsRequest struct {
	CNICFrontURL     string   `json:"cnic_front_url" binding:"required"`
	CNICBackURL      string   `json:"cnic_back_url" binding:"required"`
	KitchenPhotoURLs []string `json:"kitchen_photo_urls" binding:"required,min=1"`
	SFALicenseURL    string   `json:"sfa_license_url"`
	OtherURL         string   `json:"other_url"`
}

type ReviewDocumentRequest struct {
	Field  string `json:"field" binding:"required"`
	Index  *int   `json:"index"`
	Reason string `json:"reason"`
}

func packetView(packet *model.DocumentPacket) gin.H {
	photos := make([]gin.H, 0, len(packet.KitchenPhotos))
	for _, photo := range packet.KitchenPhotos {
		photos = append(photos, gin.H{
			"position":        photo.Position,
			"url":             photo.URL,
			"status":          photo.Status,
			"rejected_reason": photo.RejectedReason,
		})
	}

	view := gin.H{
		"cook_id": packet.CookID,
		"cnic_front": gin.H{
			"url":             packet.CNICFront.URL,
			"status":          packet.CNICFront.Status,
			"rejected_reason": packet.CNICFront.RejectedReason,
		},
		"cnic_back": gin.H{
			"url":             packet.CNICBack.URL,
			"status":          packet.CNICBack.Status,
			"rejected_reason": packet.CNICBack.RejectedReason,
		},
		"kitchen_photos": photos,
		"sfa_license": gin.H{
			"url":             packet.SFALicense.URL,
			"status":          packet.SFALicense.Status,
			"rejected_reason": packet.SFALicense.RejectedReason,
		},
		"other": gin.H{
			"url":             packet.Other.URL,
			"status":          packet.Other.Status,
			"rejected_reason": packet.Other.RejectedReason,
		},
		"verification_status": model.DeriveVerificationStatus(packet),
	}
	if packet.VerifiedBy != nil {
		view["verified_by"] = *packet.VerifiedBy
	}
	if packet.VerifiedAt != nil {
		view["verified_at"] = *packet.VerifiedAt
	}
	return view
}

func cookIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("cookId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid cook ID")
		return 0, false
	}
	return uint(id), true
}

func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCookNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Cook not found")
	case errors.Is(err, service.ErrPacketNotFound):
		apperrors.NotFound(c, apperrors.DocPacketNotFound, "This cook has not submitted documents yet")
	case errors.Is(err, service.ErrInvalidDocumentField):
		apperrors.BadRequest(c, apperrors.DocInvalidField, "Unknown document field")
	case errors.Is(err, service.ErrInvalidPhotoIndex):
		apperrors.BadRequest(c, apperrors.DocInvalidIndex, "Kitchen photo index is out of range")
	case errors.Is(err, service.ErrAlreadyApproved):
		apperrors.Conflict(c, apperrors.DocAlreadyApproved, "This document is already approved")
	case errors.Is(err, service.ErrIncompleteSubmission):
		apperrors.BadRequest(c, apperrors.DocIncompleteSubmission, "All required documents must be submitted before bulk approval")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "document review")
	}
}

// SubmitDocuments accepts a cook's verification packet
// POST /api/v1/documents/submit
func (ctrl *DocumentController) SubmitDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid document submission", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	packet, err := ctrl.docService.SubmitDocuments(cookID, service.DocumentSubmission{
		CNICFrontURL:     req.CNICFrontURL,
		CNICBackURL:      req.CNICBackURL,
		KitchenPhotoURLs: req.KitchenPhotoURLs,
		SFALicenseURL:    req.SFALicenseURL,
		OtherURL:         req.OtherURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingRequiredDocument):
			apperrors.BadRequest(c, apperrors.DocMissingRequired, "CNIC front, CNIC back and at least one kitchen photo are required")
		case errors.Is(err, service.ErrCookNotFound):
			apperrors.Forbidden(c, "Only cooks can submit verification documents")
		default:
			log.Error("Document submission failed", err, map[string]interface{}{
				"cook_id": cookID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit documents")
		}
		return
	}

	log.Info("Documents submitted", map[string]interface{}{
		"cook_id": cookID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Documents submitted for review",
		"packet":  packetView(packet),
	})
}

// GetMyPacket returns the requesting cook's own packet with per-slot statuses
// GET /api/v1/documents/me
func (ctrl *DocumentController) GetMyPacket(c *gin.Context) {
	cookID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	packet, err := ctrl.docService.GetPacket(cookID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packet": packetView(packet),
	})
}

// ListSubmittedCooks lists cooks whose packets await review
// GET /api/v1/cook-documents/submitted
func (ctrl *DocumentController) ListSubmittedCooks(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cooks, err := ctrl.docService.ListCooksAwaitingReview()
	if err != nil {
		log.Error("Failed to list cooks awaiting review", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list cooks")
		return
	}

	views := make([]gin.H, 0, len(cooks))
	for i := range cooks {
		views = append(views, userView(&cooks[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"cooks": views,
		"count": len(views),
	})
}

// GetCookPacket returns one cook's packet for admin review
// GET /api/v1/cook-documents/:cookId
func (ctrl *DocumentController) GetCookPacket(c *gin.Context) {
	cookID, ok := cookIDParam(c)
	if !ok {
		return
	}

	packet, err := ctrl.docService.GetPacket(cookID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"packet": packetView(packet),
	})
}

// ApproveDocument approves a single document slot
// PATCH /api/v1/cook-documents/:cookId/approve
func (ctrl *DocumentController) ApproveDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cookID, ok := cookIDParam(c)
	if !ok {
		return
	}
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	field, ok := model.ParseDocumentField(req.Field)
	if !ok {
		apperrors.BadRequest(c, apperrors.DocInvalidField, "Unknown document field")
		return
	}

	packet, err := ctrl.docService.ApproveDocument(cookID, field, req.Index, adminID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	log.Info("Document approved", map[string]interface{}{
		"cook_id":  cookID,
		"field":    req.Field,
		"admin_id": adminID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Document approved",
		"packet":  packetView(packet),
	})
}

// RejectDocument rejects a single document slot
// PATCH /api/v1/cook-documents/:cookId/reject
func (ctrl *DocumentController) RejectDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cookID, ok := cookIDParam(c)
	if !ok {
		return
	}
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	field, ok := model.ParseDocumentField(req.Field)
	if !ok {
		apperrors.BadRequest(c, apperrors.DocInvalidField, "Unknown document field")
		return
	}

	packet, err := ctrl.docService.RejectDocument(cookID, field, req.Index, req.Reason, adminID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	log.Info("Document rejected", map[string]interface{}{
		"cook_id":  cookID,
		"field":    req.Field,
		"admin_id": adminID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Document rejected",
		"packet":  packetView(packet),
	})
}

// ApproveAllDocuments approves every submitted slot in one action
// PATCH /api/v1/cook-documents/:cookId/approve-all
func (ctrl *DocumentController) ApproveAllDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cookID, ok := cookIDParam(c)
	if !ok {
		return
	}
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	packet, err := ctrl.docService.ApproveAllDocuments(cookID, adminID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	log.Info("All documents approved", map[string]interface{}{
		"cook_id":  cookID,
		"admin_id": adminID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "All documents approved",
		"packet":  packetView(packet),
	})
}
