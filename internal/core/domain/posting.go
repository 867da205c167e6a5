package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Scales of the stored NUMERIC columns.
const (
	amountScale   = 2
	quantityScale = 3
)

// RoundAmount rounds money and rates to the stored scale.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountScale)
}

// Rounded returns the item with quantity, weight, rate and paid amount at
// their stored scales, so line totals computed from it survive a reload.
func (i DocumentItem) Rounded() DocumentItem {
	i.Quantity = i.Quantity.Round(quantityScale)
	i.NetWeight = i.NetWeight.Round(quantityScale)
	i.Rate = RoundAmount(i.Rate)
	i.PaidAmount = RoundAmount(i.PaidAmount)
	return i
}

// LineTotal is the item's rate applied to its quantity, or to its net weight
// for weight-priced goods, rounded to the stored money scale.
func (i DocumentItem) LineTotal() decimal.Decimal {
	if i.PriceBasis == PriceByWeight {
		return i.NetWeight.Mul(i.Rate).Round(amountScale)
	}
	return i.Quantity.Mul(i.Rate).Round(amountScale)
}

// AffectsStock reports whether the item carries a product into or out of a store.
func (i DocumentItem) AffectsStock() bool {
	return i.ProductID != nil && (i.GodownID != nil || i.SiloID != nil)
}

// CalculateTotals derives all header totals from the items and the header inputs.
//
//	invoiceAmount  = Σ totalPrice
//	totalAmount    = invoiceAmount − discount
//	netPayable     = totalAmount + previousBalance
//	currentBalance = netPayable − paid
//
// Consumed production inputs are not part of the document's value.
func CalculateTotals(items []DocumentItem, discount, previousBalance, paid decimal.Decimal) DocumentTotals {
	totals := DocumentTotals{
		TotalQuantity:  decimal.Zero,
		TotalNetWeight: decimal.Zero,
		InvoiceAmount:  decimal.Zero,
	}
	for _, item := range items {
		if item.Consumed {
			continue
		}
		totals.TotalQuantity = totals.TotalQuantity.Add(item.Quantity)
		totals.TotalNetWeight = totals.TotalNetWeight.Add(item.NetWeight)
		totals.InvoiceAmount = totals.InvoiceAmount.Add(item.TotalPrice)
	}
	return totals.Recalculate(discount, previousBalance, paid)
}

// Recalculate recomputes the dependent totals while keeping the stored
// quantities and invoice amount.
func (t DocumentTotals) Recalculate(discount, previousBalance, paid decimal.Decimal) DocumentTotals {
	t.Discount = discount
	t.PreviousBalance = previousBalance
	t.PaidAmount = paid
	t.TotalAmount = t.InvoiceAmount.Sub(discount)
	t.NetPayable = t.TotalAmount.Add(previousBalance)
	t.CurrentBalance = t.NetPayable.Sub(paid)
	return t
}

// SumItemPayments totals the per-item paid amounts of a salary run.
func SumItemPayments(items []DocumentItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.PaidAmount)
	}
	return sum
}

// BalanceDeltas returns the effect the document has on counterparty balances.
// The carried previous balance is already on the counterparty, so only the
// document's own amount (currentBalance − previousBalance) moves it.
func BalanceDeltas(doc Document) []BalanceDelta {
	own := doc.CurrentBalance.Sub(doc.PreviousBalance)
	switch {
	case doc.DocumentType.IsPurchase() && doc.PartyID != nil:
		return []BalanceDelta{{CounterpartyType: CounterpartyParty, CounterpartyID: *doc.PartyID, Amount: own.Neg()}}
	case doc.DocumentType == Sale && doc.PartyID != nil:
		return []BalanceDelta{{CounterpartyType: CounterpartyParty, CounterpartyID: *doc.PartyID, Amount: own}}
	case doc.DocumentType == SalaryRun:
		perEmployee := make(map[string]decimal.Decimal)
		for _, item := range doc.Items {
			if item.EmployeeID == nil {
				continue
			}
			owed := item.TotalPrice.Sub(item.PaidAmount)
			perEmployee[*item.EmployeeID] = perEmployee[*item.EmployeeID].Sub(owed)
		}
		deltas := make([]BalanceDelta, 0, len(perEmployee))
		for id, amount := range perEmployee {
			deltas = append(deltas, BalanceDelta{CounterpartyType: CounterpartyEmployee, CounterpartyID: id, Amount: amount})
		}
		sortDeltas(deltas)
		return deltas
	}
	return nil
}

// DiffBalanceDeltas returns what must be applied to move counterparties from
// the before effect to the after effect. Zero differences are dropped.
func DiffBalanceDeltas(before, after []BalanceDelta) []BalanceDelta {
	type key struct {
		kind CounterpartyType
		id   string
	}
	net := make(map[key]decimal.Decimal)
	for _, d := range after {
		k := key{d.CounterpartyType, d.CounterpartyID}
		net[k] = net[k].Add(d.Amount)
	}
	for _, d := range before {
		k := key{d.CounterpartyType, d.CounterpartyID}
		net[k] = net[k].Sub(d.Amount)
	}
	diff := make([]BalanceDelta, 0, len(net))
	for k, amount := range net {
		if amount.IsZero() {
			continue
		}
		diff = append(diff, BalanceDelta{CounterpartyType: k.kind, CounterpartyID: k.id, Amount: amount})
	}
	sortDeltas(diff)
	return diff
}

// sortDeltas orders deltas by id so row locks are always taken in the same order.
func sortDeltas(deltas []BalanceDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].CounterpartyType != deltas[j].CounterpartyType {
			return deltas[i].CounterpartyType < deltas[j].CounterpartyType
		}
		return deltas[i].CounterpartyID < deltas[j].CounterpartyID
	})
}

// MovementDirectionFor returns the stock direction of an item of the given document type.
func MovementDirectionFor(docType DocumentType, item DocumentItem) (MovementDirection, bool) {
	switch {
	case docType.IsPurchase():
		return MovementIn, true
	case docType == Sale:
		return MovementOut, true
	case docType == Production:
		if item.Consumed {
			return MovementOut, true
		}
		return MovementIn, true
	}
	return "", false
}

// BuildStockMovements creates one movement per stock-affecting item.
// newID supplies movement identifiers.
func BuildStockMovements(doc Document, items []DocumentItem, newID func() string, userID string, now time.Time) []StockMovement {
	movements := make([]StockMovement, 0, len(items))
	for _, item := range items {
		direction, ok := MovementDirectionFor(doc.DocumentType, item)
		if !ok || !item.AffectsStock() {
			continue
		}
		itemID := item.ItemID
		movements = append(movements, StockMovement{
			MovementID:     newID(),
			DocumentID:     doc.DocumentID,
			DocumentItemID: &itemID,
			ProductID:      *item.ProductID,
			GodownID:       item.GodownID,
			SiloID:         item.SiloID,
			Direction:      direction,
			Quantity:       item.Quantity,
			NetWeight:      item.NetWeight,
			MovementDate:   doc.DocumentDate,
			CreatedAt:      now,
			CreatedBy:      userID,
		})
	}
	return movements
}

// OffsettingMovements mirrors previously posted movements with the opposite direction.
func OffsettingMovements(posted []StockMovement, newID func() string, movementDate time.Time, userID string, now time.Time) []StockMovement {
	offsets := make([]StockMovement, 0, len(posted))
	for _, m := range posted {
		offset := m
		offset.MovementID = newID()
		offset.Direction = m.Direction.Opposite()
		offset.MovementDate = movementDate
		offset.CreatedAt = now
		offset.CreatedBy = userID
		offsets = append(offsets, offset)
	}
	return offsets
}

// ApplyPatch changes the patched header fields and recomputes the totals from
// the stored invoice amount and previous balance. It reports whether anything changed.
func (d *Document) ApplyPatch(patch DocumentPatch) (bool, error) {
	if d.Status == StatusCancelled {
		if patch.Status != nil && *patch.Status == StatusCancelled && patch.Discount == nil && patch.PaidAmount == nil && patch.Notes == nil && patch.TransportInfo == nil {
			return false, nil
		}
		return false, fmt.Errorf("document %s is cancelled and cannot be changed", d.ReferenceNumber)
	}

	changed := false
	discount := d.Discount
	paid := d.PaidAmount

	if patch.Discount != nil {
		if patch.Discount.IsNegative() {
			return false, fmt.Errorf("discount cannot be negative")
		}
		if v := RoundAmount(*patch.Discount); !v.Equal(discount) {
			discount = v
			changed = true
		}
	}
	if patch.PaidAmount != nil {
		if patch.PaidAmount.IsNegative() {
			return false, fmt.Errorf("paid amount cannot be negative")
		}
		if v := RoundAmount(*patch.PaidAmount); !v.Equal(paid) {
			paid = v
			changed = true
		}
	}
	if patch.Status != nil && *patch.Status != d.Status {
		if !patch.Status.IsValid() || !d.Status.CanTransitionTo(*patch.Status) {
			return false, fmt.Errorf("status cannot change from %s to %s", d.Status, *patch.Status)
		}
		d.Status = *patch.Status
		changed = true
	}
	if patch.Notes != nil && *patch.Notes != d.Notes {
		d.Notes = *patch.Notes
		changed = true
	}
	if patch.TransportInfo != nil && *patch.TransportInfo != d.TransportInfo {
		d.TransportInfo = *patch.TransportInfo
		changed = true
	}

	if changed {
		d.DocumentTotals = d.DocumentTotals.Recalculate(discount, d.PreviousBalance, paid)
		d.Touch(patch.UpdatedBy, patch.UpdatedAt)
	}
	return changed, nil
}

// Cancel moves the document to cancelled. Cancelling twice is a no-op.
func (d *Document) Cancel(userID string, now time.Time) bool {
	if d.Status == StatusCancelled {
		return false
	}
	d.Status = StatusCancelled
	d.Touch(userID, now)
	return true
}
