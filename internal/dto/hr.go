package dto

import "github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"

type AttendanceEntry struct {
	EmployeeID string                  `json:"employeeId" binding:"required"`
	Status     domain.AttendanceStatus `json:"status" binding:"required,oneof=PRESENT ABSENT LEAVE HALF_DAY"`
	Notes      string                  `json:"notes"`
}

// MarkAttendanceRequest records the marks of one day.
type MarkAttendanceRequest struct {
	Date    Date              `json:"date" binding:"required"`
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// GenerateSalaryRequest builds a salary run from a month's attendance.
type GenerateSalaryRequest struct {
	Month        string `json:"month" binding:"required,yearmonth"`
	DocumentDate *Date  `json:"documentDate"` // Defaults to the last day of the month
	Notes        string `json:"notes"`
}
