package repositories

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AttendanceRepositoryWithTx stores daily attendance marks
type AttendanceRepositoryWithTx interface {
	// UpsertAttendance writes one row per employee and date, replacing an existing mark.
	UpsertAttendance(ctx context.Context, tx pgx.Tx, marks []domain.Attendance) error

	ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error)

	TransactionManager
}
