package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

// installmentActive reports whether an installment debt has reached its first
// payment date.
func installmentActive(d *core.Debt, date time.Time) bool {
	return !d.FirstPaymentDate.IsEmpty() && !date.Before(d.FirstPaymentDate.Time)
}

// payable reports whether d takes a payment this month.
func payable(d *core.Debt, date time.Time) bool {
	if !d.Balance.IsPositive() {
		return false
	}
	if d.Kind == core.DebtFixedInstallment {
		return installmentActive(d, date) && d.RemainingInstallments > 0
	}
	return true
}

// allocate pays every payable debt its minimum, the target additionally
// receiving pool. It returns the payment made on each debt and the sum of
// minimums released by debts that were extinguished this month.
func allocate(debts []core.Debt, target int, pool decimal.Decimal, date time.Time) ([]decimal.Decimal, decimal.Decimal) {
	payments := make([]decimal.Decimal, len(debts))
	freed := decimal.Zero

	for i := range debts {
		d := &debts[i]
		if !payable(d, date) {
			continue
		}

		minimum := d.MinPayment
		due := minimum
		if i == target {
			due = due.Add(pool)
		}
		payment := decimal.Min(d.Balance, due)
		payments[i] = payment

		d.Balance = d.Balance.Sub(payment)
		if d.Kind == core.DebtFixedInstallment && d.Balance.IsPositive() {
			d.RemainingInstallments--
		}
		if !d.Balance.IsPositive() {
			d.Balance = decimal.Zero
			freed = freed.Add(minimum)
		}
	}
	return payments, freed
}
