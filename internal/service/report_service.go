package service

import (
	"context"
	"fmt"

	"roadreport/internal/model"
	"roadreport/internal/repository"
)

// ReportService exposes the submitted-report archive to operators.
type ReportService struct {
	reportRepo repository.ReportRepo
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepo) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// List returns recent submissions, optionally filtered by mode.
func (s *ReportService) List(ctx context.Context, mode model.Mode, limit int64) ([]*model.SubmittedReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	reports, err := s.reportRepo.List(ctx, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Get returns one archived submission.
func (s *ReportService) Get(ctx context.Context, id string) (*model.SubmittedReport, error) {
	return s.reportRepo.GetByID(ctx, id)
}
