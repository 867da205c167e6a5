// Package export renders reports as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	DailyReportSheet   = "Daily Report"
	StockRegisterSheet = "Stock Register"
	dateLayout         = "2006-01-02"
)

// sheetWriter appends rows to one sheet and remembers the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	bold  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string) (*sheetWriter, error) {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &sheetWriter{f: f, sheet: sheet, bold: bold}, nil
}

func (w *sheetWriter) writeRow(header bool, values ...any) {
	if w.err != nil {
		return
	}
	w.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if d, ok := v.(decimal.Decimal); ok {
			v = d.InexactFloat64()
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
	if header && len(values) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, w.row)
		last, _ := excelize.CoordinatesToCellName(len(values), w.row)
		w.err = w.f.SetCellStyle(w.sheet, first, last, w.bold)
	}
}

func (w *sheetWriter) blank() {
	w.row++
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	return f, nil
}

// DailyReportWorkbook lays the daily report out on a single sheet.
func DailyReportWorkbook(report domain.DailyReport) (*bytes.Buffer, error) {
	f, err := newWorkbook(DailyReportSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := newSheetWriter(f, DailyReportSheet)
	if err != nil {
		return nil, err
	}

	w.writeRow(true, "Daily Report", report.Date.Format(dateLayout))
	w.blank()
	w.writeRow(true, "Document Type", "Count", "Total Amount", "Paid Amount")
	for _, d := range report.Documents {
		w.writeRow(false, string(d.DocumentType), d.Count, d.TotalAmount, d.PaidAmount)
	}
	w.blank()
	w.writeRow(true, "Account Head", "Type", "Amount")
	for _, h := range report.Income {
		w.writeRow(false, h.HeadName, string(h.HeadType), h.Amount)
	}
	for _, h := range report.Expense {
		w.writeRow(false, h.HeadName, string(h.HeadType), h.Amount)
	}
	w.blank()
	w.writeRow(false, "Opening Cash", report.OpeningCash)
	w.writeRow(false, "Cash In", report.CashIn)
	w.writeRow(false, "Cash Out", report.CashOut)
	w.writeRow(true, "Closing Cash", report.ClosingCash)
	if w.err != nil {
		return nil, fmt.Errorf("write daily report: %w", w.err)
	}

	return f.WriteToBuffer()
}

// StockRegisterWorkbook writes one row per product and location.
func StockRegisterWorkbook(rows []domain.StockRegisterRow) (*bytes.Buffer, error) {
	f, err := newWorkbook(StockRegisterSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := newSheetWriter(f, StockRegisterSheet)
	if err != nil {
		return nil, err
	}

	w.writeRow(true,
		"Product", "Location",
		"Opening Qty", "Opening Weight",
		"In Qty", "In Weight",
		"Out Qty", "Out Weight",
		"Closing Qty", "Closing Weight",
	)
	for _, r := range rows {
		w.writeRow(false,
			r.ProductName, r.LocationName,
			r.OpeningQty, r.OpeningWeight,
			r.InQty, r.InWeight,
			r.OutQty, r.OutWeight,
			r.ClosingQty, r.ClosingWeight,
		)
	}
	if w.err != nil {
		return nil, fmt.Errorf("write stock register: %w", w.err)
	}
	if err := f.SetPanes(StockRegisterSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	return f.WriteToBuffer()
}
