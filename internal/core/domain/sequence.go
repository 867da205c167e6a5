package domain

import (
	"fmt"
	"strconv"
	"time"
)

// SequenceType names an independent reference-number counter.
type SequenceType string

const (
	SequencePaddyPurchase      SequenceType = "PADDY_PURCHASE"
	SequenceRicePurchase       SequenceType = "RICE_PURCHASE"
	SequenceSale               SequenceType = "SALE"
	SequenceProduction         SequenceType = "PRODUCTION"
	SequenceSalary             SequenceType = "SALARY"
	SequenceAccountTransaction SequenceType = "ACCOUNT_TRANSACTION"
)

var sequencePrefixes = map[SequenceType]string{
	SequencePaddyPurchase:      "PP",
	SequenceRicePurchase:       "RP",
	SequenceSale:               "SL",
	SequenceProduction:         "PR",
	SequenceSalary:             "SAL",
	SequenceAccountTransaction: "TX",
}

// Prefix returns the reference-number prefix of the sequence.
func (s SequenceType) Prefix() (string, bool) {
	p, ok := sequencePrefixes[s]
	return p, ok
}

// SequenceFor maps a document type onto its counter.
func SequenceFor(t DocumentType) SequenceType {
	return SequenceType(t)
}

// PeriodOf is the counter period of a date: its four-digit year.
func PeriodOf(date time.Time) string {
	return strconv.Itoa(date.Year())
}

// FormatReferenceNumber renders a counter value, e.g. PP-2024-000001.
func FormatReferenceNumber(seq SequenceType, period string, value int64) (string, error) {
	prefix, ok := seq.Prefix()
	if !ok {
		return "", fmt.Errorf("unknown sequence type %q", seq)
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, period, value), nil
}
