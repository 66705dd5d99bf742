// Package budget derives the monthly cash flow that feeds a projection.
package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
	"payoff/internal/projection"
)

var (
	ErrNoDebts      = errors.New("at least one debt is required")
	ErrNoIncome     = errors.New("at least one income is required")
	ErrNoExtraPower = errors.New("no extra payment power left after minimums, expenses and savings")
)

// Analysis is the cash-flow breakdown of a snapshot.
type Analysis struct {
	TotalIncome         decimal.Decimal   `json:"total_income"`
	RecurringIncome     decimal.Decimal   `json:"recurring_income"`
	OneTimeIncome       decimal.Decimal   `json:"one_time_income"`
	FixedExpenses       decimal.Decimal   `json:"fixed_expenses"`
	MinimumPayments     decimal.Decimal   `json:"minimum_payments"`
	MandatoryOutflow    decimal.Decimal   `json:"mandatory_outflow"`
	NetSurplus          decimal.Decimal   `json:"net_surplus"`
	SavingsContribution decimal.Decimal   `json:"savings_contribution"`
	ExtraPower          decimal.Decimal   `json:"extra_power"`
	AggregateCardLimit  decimal.Decimal   `json:"aggregate_card_limit"`
	TotalDebt           decimal.Decimal   `json:"total_debt"`
	Goal                *core.SavingsGoal `json:"goal,omitempty"`
}

// Analyze computes the baseline cash flow. One-time incomes count toward the
// first month's surplus only; the projection never repeats them.
func Analyze(s core.Snapshot) Analysis {
	a := Analysis{
		RecurringIncome:    decimal.Zero,
		OneTimeIncome:      decimal.Zero,
		FixedExpenses:      decimal.Zero,
		MinimumPayments:    decimal.Zero,
		AggregateCardLimit: s.AggregateCardLimit(),
		TotalDebt:          s.TotalDebt(),
		Goal:               s.ActiveGoal(),
	}

	for _, in := range s.Incomes {
		if in.Kind == core.IncomeOneTime {
			a.OneTimeIncome = a.OneTimeIncome.Add(in.Amount)
			continue
		}
		a.RecurringIncome = a.RecurringIncome.Add(in.Amount)
	}
	a.TotalIncome = a.RecurringIncome.Add(a.OneTimeIncome)

	for _, e := range s.Expenses {
		a.FixedExpenses = a.FixedExpenses.Add(e.Amount)
	}
	for _, d := range s.Debts {
		a.MinimumPayments = a.MinimumPayments.Add(projection.BaselineMinimum(d, a.AggregateCardLimit))
	}

	a.MandatoryOutflow = a.MinimumPayments.Add(a.FixedExpenses)
	a.NetSurplus = a.TotalIncome.Sub(a.MandatoryOutflow)
	a.SavingsContribution = projection.MonthlyContribution(a.Goal, a.NetSurplus)
	a.ExtraPower = a.NetSurplus.Sub(a.SavingsContribution)
	return a
}

// Prepare checks the preconditions of a projection and builds its input.
func Prepare(s core.Snapshot, strategy core.Strategy, start time.Time) (projection.Input, Analysis, error) {
	if !strategy.Valid() {
		return projection.Input{}, Analysis{}, core.ErrInvalidStrategy
	}
	if len(s.Debts) == 0 {
		return projection.Input{}, Analysis{}, ErrNoDebts
	}
	if len(s.Incomes) == 0 {
		return projection.Input{}, Analysis{}, ErrNoIncome
	}

	a := Analyze(s)
	if !a.ExtraPower.IsPositive() {
		return projection.Input{}, a, ErrNoExtraPower
	}

	c := s.Clone()
	return projection.Input{
		Debts:              c.Debts,
		Incomes:            c.Incomes,
		Expenses:           c.Expenses,
		Goal:               a.Goal,
		NetSurplus:         a.NetSurplus,
		Strategy:           strategy,
		ExtraPower:         a.ExtraPower,
		AggregateCardLimit: a.AggregateCardLimit,
		Start:              start,
	}, a, nil
}
