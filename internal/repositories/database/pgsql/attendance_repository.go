package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAttendanceRepository struct {
	BaseRepository
}

func newPgxAttendanceRepository(pool *pgxpool.Pool) portsrepo.AttendanceRepositoryWithTx {
	return &PgxAttendanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AttendanceRepositoryWithTx = (*PgxAttendanceRepository)(nil)

// UpsertAttendance keeps the original id and creation stamp of a replaced mark.
func (r *PgxAttendanceRepository) UpsertAttendance(ctx context.Context, tx pgx.Tx, marks []domain.Attendance) error {
	batch := &pgx.Batch{}
	for _, m := range marks {
		batch.Queue(`
			INSERT INTO attendance (
				attendance_id, employee_id, attendance_date, status, notes,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
				status = EXCLUDED.status,
				notes = EXCLUDED.notes,
				last_updated_at = EXCLUDED.last_updated_at,
				last_updated_by = EXCLUDED.last_updated_by`,
			m.AttendanceID, m.EmployeeID, m.AttendanceDate, m.Status, m.Notes,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}
	return sendBatch(ctx, tx, batch, "failed to save attendance")
}

func (r *PgxAttendanceRepository) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	conds := []string{"TRUE"}
	var args []any
	if filter.Range.From != nil {
		args = append(args, *filter.Range.From)
		conds = append(conds, fmt.Sprintf("attendance_date >= $%d", len(args)))
	}
	if filter.Range.To != nil {
		args = append(args, *filter.Range.To)
		conds = append(conds, fmt.Sprintf("attendance_date <= $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT attendance_id, employee_id, attendance_date, status, notes,
			created_at, created_by, last_updated_at, last_updated_by
		FROM attendance
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY attendance_date, employee_id`, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to list attendance")
	}
	defer rows.Close()

	marks := []domain.Attendance{}
	for rows.Next() {
		var m domain.Attendance
		if err := rows.Scan(&m.AttendanceID, &m.EmployeeID, &m.AttendanceDate, &m.Status, &m.Notes,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, mapPgError(err, "failed to scan attendance")
		}
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to iterate attendance")
	}
	return marks, nil
}
