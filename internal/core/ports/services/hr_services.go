package services

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// HRSvc covers attendance and salary-run generation
type HRSvc interface {
	MarkAttendance(ctx context.Context, req dto.MarkAttendanceRequest, userID string) ([]domain.Attendance, error)
	ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error)

	// GenerateSalaryRun posts a SALARY document for the month from attendance.
	GenerateSalaryRun(ctx context.Context, req dto.GenerateSalaryRequest, userID string) (*domain.Document, error)
}
