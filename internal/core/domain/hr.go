package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceStatus is an employee's mark for one day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLeave   AttendanceStatus = "LEAVE"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHalfDay:
		return true
	}
	return false
}

// PayableWeight is the fraction of a daily wage the mark earns.
func (s AttendanceStatus) PayableWeight() decimal.Decimal {
	switch s {
	case AttendancePresent:
		return decimal.NewFromInt(1)
	case AttendanceHalfDay:
		return decimal.NewFromFloat(0.5)
	}
	return decimal.Zero
}

type Attendance struct {
	AttendanceID   string           `json:"attendanceID"`
	EmployeeID     string           `json:"employeeID"`
	AttendanceDate time.Time        `json:"attendanceDate"`
	Status         AttendanceStatus `json:"status"`
	Notes          string           `json:"notes"`
	AuditFields
}

type AttendanceFilter struct {
	Range      DateRange
	EmployeeID *string
}

// PayableDays sums the payable weight of every mark.
func PayableDays(marks []Attendance) decimal.Decimal {
	days := decimal.Zero
	for _, m := range marks {
		days = days.Add(m.Status.PayableWeight())
	}
	return days
}

var salaryMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsSalaryMonth reports whether s is a YYYY-MM month.
func IsSalaryMonth(s string) bool {
	return salaryMonthPattern.MatchString(s)
}

// SalaryMonthRange returns the first and last day of a YYYY-MM month.
func SalaryMonthRange(month string) (time.Time, time.Time, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}
