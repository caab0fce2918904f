package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/khanaghar/khanaghar-backend/internal/errors"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
	"github.com/khanaghar/khanaghar-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder" binding:"omitempty,oneof=documents kitchen-photos meals"`
}

var imageContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

// Document scans may also arrive as PDFs.
var documentContentTypes = append([]string{"application/pdf"}, imageContentTypes...)

// PresignUpload issues a presigned S3 PUT URL for client-side uploads
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The submitted information is not valid")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = storage.FolderDocuments
	}

	allowed := imageContentTypes
	if folder == storage.FolderDocuments {
		allowed = documentContentTypes
	}
	if !storage.AllowedContentType(req.ContentType, allowed) {
		log.Warn("Rejected upload content type", map[string]interface{}{
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "This file type is not allowed")
		return
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Could not prepare the upload")
		return
	}

	log.Info("Presigned upload issued", map[string]interface{}{
		"folder": folder,
		"key":    upload.Key,
	})

	c.JSON(http.StatusOK, upload)
}
