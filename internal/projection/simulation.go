// Package projection simulates month-by-month repayment of a debt snapshot.
//
// A Simulation owns private copies of its input and advances one month per
// call to Next, so callers can inspect the ledger as it is produced. Run
// drives a simulation to completion.
package projection

import (
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

// ErrHorizonExceeded is returned when debts remain open after HorizonMonths.
var ErrHorizonExceeded = errors.New("plan takes longer than 50 years")

const labelLayout = "January 2006"

// State is the lifecycle of a Simulation.
type State int

const (
	Running State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Input is everything one projection needs. The caller derives ExtraPower,
// NetSurplus and AggregateCardLimit from the snapshot beforehand.
type Input struct {
	Debts              []core.Debt
	Incomes            []core.Income
	Expenses           []core.FixedExpense
	Goal               *core.SavingsGoal
	NetSurplus         decimal.Decimal
	Strategy           core.Strategy
	ExtraPower         decimal.Decimal
	AggregateCardLimit decimal.Decimal
	// Start is the current date; month 1 falls one calendar month later.
	Start time.Time
}

type Line struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type DebtLine struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	Payment    decimal.Decimal `json:"payment"`
	MinPayment decimal.Decimal `json:"min_payment"`
	Paid       bool            `json:"paid"`
}

// MonthlyRow is one ledger entry. Debts follow input order.
type MonthlyRow struct {
	Month    int        `json:"month"`
	Date     core.Date  `json:"date"`
	Label    string     `json:"label"`
	Incomes  []Line     `json:"incomes"`
	Expenses []Line     `json:"expenses"`
	Debts    []DebtLine `json:"debts"`
	// Target indexes Debts, -1 when no debt received the extra pool.
	Target         int             `json:"target"`
	ExtraPool      decimal.Decimal `json:"extra_pool"`
	Interest       decimal.Decimal `json:"interest"`
	Savings        decimal.Decimal `json:"savings"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

type Result struct {
	MonthsToFreedom   int             `json:"months_to_freedom"`
	TotalInterestPaid decimal.Decimal `json:"total_interest_paid"`
	FinalSavings      decimal.Decimal `json:"final_savings"`
	Ledger            []MonthlyRow    `json:"ledger"`
}

func (r Result) Years() int { return r.MonthsToFreedom / 12 }

func (r Result) RemainderMonths() int { return r.MonthsToFreedom % 12 }

type Simulation struct {
	debts     []core.Debt
	incomes   []core.Income
	expenses  []core.FixedExpense
	strategy  core.Strategy
	cardLimit decimal.Decimal
	start     time.Time

	pool     decimal.Decimal
	savings  savings
	month    int
	interest decimal.Decimal
	state    State
}

// New prepares a simulation. The input slices are copied and never modified.
func New(in Input) *Simulation {
	y, m, d := in.Start.Date()
	s := &Simulation{
		debts:     slices.Clone(in.Debts),
		incomes:   slices.Clone(in.Incomes),
		expenses:  slices.Clone(in.Expenses),
		strategy:  in.Strategy,
		cardLimit: in.AggregateCardLimit,
		start:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		pool:      in.ExtraPower,
		savings:   newSavings(in.Goal, in.NetSurplus),
	}
	if s.remaining().IsZero() {
		s.state = Succeeded
	}
	return s
}

func (s *Simulation) State() State { return s.state }

// Month is the number of months simulated so far.
func (s *Simulation) Month() int { return s.month }

func (s *Simulation) TotalInterest() decimal.Decimal { return s.interest }

func (s *Simulation) Savings() decimal.Decimal { return s.savings.total }

// Next simulates one month. It returns false once the simulation is terminal.
func (s *Simulation) Next() (MonthlyRow, bool) {
	if s.state != Running {
		return MonthlyRow{}, false
	}

	s.month++
	date := addMonths(s.start, s.month)
	row := MonthlyRow{
		Month:    s.month,
		Date:     core.Date{Time: date},
		Label:    date.Format(labelLayout),
		Incomes:  make([]Line, 0, len(s.incomes)),
		Expenses: make([]Line, 0, len(s.expenses)),
		Debts:    make([]DebtLine, 0, len(s.debts)),
		Target:   -1,
	}

	for i := range s.incomes {
		amount, raise := evaluateIncome(s.month, &s.incomes[i])
		s.pool = s.pool.Add(raise)
		row.Incomes = append(row.Incomes, Line{ID: s.incomes[i].ID, Name: s.incomes[i].Name, Amount: amount})
	}
	for _, e := range s.expenses {
		row.Expenses = append(row.Expenses, Line{ID: e.ID, Name: e.Name, Amount: e.Amount})
	}

	row.Interest = decimal.Zero
	for i := range s.debts {
		row.Interest = row.Interest.Add(recalculate(&s.debts[i], s.cardLimit))
	}
	s.interest = s.interest.Add(row.Interest)

	if order := Priority(s.debts, s.strategy); len(order) > 0 {
		row.Target = order[0]
	}
	minimums := make([]decimal.Decimal, len(s.debts))
	for i := range s.debts {
		minimums[i] = s.debts[i].MinPayment
	}

	payments, freed := allocate(s.debts, row.Target, s.pool, date)
	row.ExtraPool = s.pool
	s.pool = s.pool.Add(freed)
	row.Savings = s.savings.accumulate()

	for i, d := range s.debts {
		row.Debts = append(row.Debts, DebtLine{
			ID:         d.ID,
			Name:       d.Name,
			Balance:    d.Balance,
			Payment:    payments[i],
			MinPayment: minimums[i],
			Paid:       !d.Balance.IsPositive(),
		})
	}
	row.TotalRemaining = s.remaining()

	switch {
	case row.TotalRemaining.IsZero():
		s.state = Succeeded
	case s.month >= HorizonMonths:
		s.state = Failed
	}
	return row, true
}

// Rows yields the remaining months. The sequence is single use.
func (s *Simulation) Rows() iter.Seq[MonthlyRow] {
	return func(yield func(MonthlyRow) bool) {
		for {
			row, ok := s.Next()
			if !ok || !yield(row) {
				return
			}
		}
	}
}

// Run simulates until every debt is paid. It returns ErrHorizonExceeded when
// that takes longer than HorizonMonths.
func Run(in Input) (Result, error) {
	sim := New(in)
	var ledger []MonthlyRow
	for row := range sim.Rows() {
		ledger = append(ledger, row)
	}
	if sim.State() == Failed {
		return Result{}, ErrHorizonExceeded
	}
	return Result{
		MonthsToFreedom:   sim.Month(),
		TotalInterestPaid: sim.TotalInterest(),
		FinalSavings:      sim.Savings(),
		Ledger:            ledger,
	}, nil
}

func (s *Simulation) remaining() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.debts {
		if d.Balance.IsPositive() {
			total = total.Add(d.Balance)
		}
	}
	return total
}

// addMonths moves t forward n calendar months, clamping the day to the end of
// the target month.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, time.UTC)
}
