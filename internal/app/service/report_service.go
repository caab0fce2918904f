package service

import (
	"bytes"
	"fmt"

	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ReportService produces admin-facing exports
type ReportService interface {
	// ExportVerificationReport renders every cook's verification state as an
	// Excel workbook for offline review.
	ExportVerificationReport() (*bytes.Buffer, error)
}

type reportService struct {
	userRepo repository.UserRepository
}

func NewReportService(userRepo repository.UserRepository) ReportService {
	return &reportService{userRepo: userRepo}
}

func (s *reportService) ExportVerificationReport() (*bytes.Buffer, error) {
	logger.Info("Exporting cook verification report", nil)

	cooks, err := s.userRepo.ListCooks()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Cooks"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "City", "Account Status", "Status Reason", "Verification Status", "Registered At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, cook := range cooks {
		values := []interface{}{
			cook.ID,
			cook.Name,
			cook.Email,
			cook.City,
			string(cook.Status),
			cook.StatusReason,
			string(cook.VerificationStatus),
			cook.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to render verification report", err, nil)
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	logger.Info("Verification report exported", map[string]interface{}{
		"cooks": len(cooks),
	})
	return buf, nil
}
