package core

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is everything one owner has recorded, in insertion order.
type Snapshot struct {
	Debts    []Debt         `json:"debts"`
	Incomes  []Income       `json:"incomes"`
	Expenses []FixedExpense `json:"expenses"`
	Goals    []SavingsGoal  `json:"goals"`
}

// User is an account that owns a snapshot.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Clone returns a copy that shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Debts:    slices.Clone(s.Debts),
		Incomes:  slices.Clone(s.Incomes),
		Expenses: slices.Clone(s.Expenses),
		Goals:    slices.Clone(s.Goals),
	}
}

// AggregateCardLimit sums the limits of all revolving cards.
func (s Snapshot) AggregateCardLimit() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Debts {
		if d.Kind == DebtRevolvingCard {
			total = total.Add(d.CardLimit)
		}
	}
	return total
}

// TotalDebt sums every recorded balance.
func (s Snapshot) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.Debts {
		total = total.Add(d.Balance)
	}
	return total
}

// ActiveGoal returns the first savings goal; only one is used per projection.
func (s Snapshot) ActiveGoal() *SavingsGoal {
	if len(s.Goals) == 0 {
		return nil
	}
	g := s.Goals[0]
	return &g
}
