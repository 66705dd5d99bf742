package projection

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var start = time.Date(2025, time.December, 15, 10, 30, 0, 0, time.UTC)

func loan(id int64, name, balance, rate, min string) core.Debt {
	return core.Debt{
		ID:           id,
		Name:         name,
		Kind:         core.DebtAmortizingLoan,
		Balance:      dec(balance),
		InterestRate: dec(rate),
		MinPayment:   dec(min),
	}
}

func TestZeroInterestSingleDebt(t *testing.T) {
	res, err := Run(Input{
		Debts:      []core.Debt{loan(1, "Car", "1200", "0", "100")},
		Strategy:   core.StrategyAvalanche,
		ExtraPower: decimal.Zero,
		Start:      start,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.MonthsToFreedom != 12 {
		t.Errorf("MonthsToFreedom = %d, want 12", res.MonthsToFreedom)
	}
	if !res.TotalInterestPaid.IsZero() {
		t.Errorf("TotalInterestPaid = %s, want 0", res.TotalInterestPaid)
	}
	if len(res.Ledger) != 12 {
		t.Fatalf("len(Ledger) = %d, want 12", len(res.Ledger))
	}
	last := res.Ledger[11]
	if !last.Debts[0].Paid || !last.TotalRemaining.IsZero() {
		t.Errorf("last row = %+v, want debt paid", last.Debts[0])
	}
	if res.Years() != 1 || res.RemainderMonths() != 0 {
		t.Errorf("Years/RemainderMonths = %d/%d, want 1/0", res.Years(), res.RemainderMonths())
	}
}

func TestStrategyDivergence(t *testing.T) {
	debts := []core.Debt{
		loan(1, "X", "5000", "20", "100"),
		loan(2, "Y", "1000", "10", "100"),
	}

	tests := []struct {
		strategy core.Strategy
		target   int
	}{
		{core.StrategyAvalanche, 0},
		{core.StrategySnowball, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			sim := New(Input{Debts: debts, Strategy: tt.strategy, ExtraPower: dec("500"), Start: start})
			row, ok := sim.Next()
			if !ok {
				t.Fatal("Next() returned no row")
			}
			if row.Target != tt.target {
				t.Fatalf("Target = %d, want %d", row.Target, tt.target)
			}
			for i, d := range row.Debts {
				want := dec("100")
				if i == tt.target {
					want = dec("600")
				}
				if !d.Payment.Equal(want) {
					t.Errorf("debt %s payment = %s, want %s", d.Name, d.Payment, want)
				}
			}
		})
	}
}

func TestAvalancheTieKeepsInputOrder(t *testing.T) {
	debts := []core.Debt{
		loan(1, "A", "900", "15", "10"),
		loan(2, "B", "100", "15", "10"),
	}
	if got := Priority(debts, core.StrategyAvalanche); got[0] != 0 {
		t.Fatalf("Priority() = %v, want A first", got)
	}

	debts[0].Balance = dec("100")
	if got := Priority(debts, core.StrategySnowball); got[0] != 0 {
		t.Fatalf("Priority() = %v, want A first on equal balance", got)
	}
}

func TestCascadeEffect(t *testing.T) {
	debts := []core.Debt{
		loan(1, "Small", "400", "0", "150"),
		loan(2, "Large", "10000", "0", "200"),
	}
	sim := New(Input{Debts: debts, Strategy: core.StrategySnowball, ExtraPower: dec("50"), Start: start})

	var rows []MonthlyRow
	for row := range sim.Rows() {
		rows = append(rows, row)
	}

	k := -1
	for i, row := range rows {
		if row.Debts[0].Paid {
			k = i
			break
		}
	}
	if k < 0 || k+1 >= len(rows) {
		t.Fatalf("small debt never paid before the end of the ledger")
	}
	if rows[k].Target != 0 {
		t.Fatalf("Target in payoff month = %d, want 0", rows[k].Target)
	}
	want := rows[k].ExtraPool.Add(dec("150"))
	if got := rows[k+1].ExtraPool; !got.Equal(want) {
		t.Errorf("ExtraPool after payoff = %s, want %s", got, want)
	}
	if rows[k+1].Target != 1 {
		t.Errorf("Target after payoff = %d, want 1", rows[k+1].Target)
	}
}

func TestRaisePropagation(t *testing.T) {
	income := core.Income{
		ID:              1,
		Name:            "Salary",
		Kind:            core.IncomeSalaryWithRaises,
		Amount:          dec("1000"),
		RaisesPerYear:   1,
		RaisePercentage: dec("10"),
	}
	in := Input{
		Debts:      []core.Debt{loan(1, "Mortgage", "100000", "0", "100")},
		Incomes:    []core.Income{income},
		Strategy:   core.StrategyAvalanche,
		ExtraPower: dec("50"),
		Start:      start,
	}
	sim := New(in)

	var rows []MonthlyRow
	for row := range sim.Rows() {
		rows = append(rows, row)
		if row.Month == 13 {
			break
		}
	}

	if got := rows[11].Incomes[0].Amount; !got.Equal(dec("1000")) {
		t.Errorf("month 12 income = %s, want 1000", got)
	}
	if got := rows[12].Incomes[0].Amount; !got.Equal(dec("1100")) {
		t.Errorf("month 13 income = %s, want 1100", got)
	}
	if diff := rows[12].ExtraPool.Sub(rows[11].ExtraPool); !diff.Equal(dec("100")) {
		t.Errorf("pool increase at month 13 = %s, want 100", diff)
	}
	if !in.Incomes[0].Amount.Equal(dec("1000")) {
		t.Errorf("caller income mutated to %s", in.Incomes[0].Amount)
	}
}

func TestRaiseDue(t *testing.T) {
	tests := []struct {
		month, perYear int
		want           bool
	}{
		{1, 1, false},
		{12, 1, false},
		{13, 1, true},
		{25, 1, true},
		{7, 2, true},
		{13, 2, true},
		{10, 2, false},
		{13, 0, false},
	}
	for _, tt := range tests {
		if got := raiseDue(tt.month, tt.perYear); got != tt.want {
			t.Errorf("raiseDue(%d, %d) = %v, want %v", tt.month, tt.perYear, got, tt.want)
		}
	}
}

func TestNonConvergence(t *testing.T) {
	in := Input{
		Debts:      []core.Debt{loan(1, "Huge", "10000000", "0", "10")},
		Strategy:   core.StrategyAvalanche,
		ExtraPower: decimal.Zero,
		Start:      start,
	}
	if _, err := Run(in); !errors.Is(err, ErrHorizonExceeded) {
		t.Fatalf("Run() error = %v, want %v", err, ErrHorizonExceeded)
	}

	sim := New(in)
	var last MonthlyRow
	for row := range sim.Rows() {
		last = row
	}
	if sim.State() != Failed || sim.Month() != HorizonMonths {
		t.Fatalf("State/Month = %v/%d, want failed/%d", sim.State(), sim.Month(), HorizonMonths)
	}
	if !last.TotalRemaining.IsPositive() {
		t.Errorf("TotalRemaining = %s, want positive", last.TotalRemaining)
	}
	if _, ok := sim.Next(); ok {
		t.Error("Next() after failure returned a row")
	}
}

func TestIdempotence(t *testing.T) {
	in := Input{
		Debts: []core.Debt{
			{ID: 1, Name: "Visa", Kind: core.DebtRevolvingCard, Balance: dec("3200"), InterestRate: dec("42"), CardLimit: dec("60000")},
			{ID: 2, Name: "KMH", Kind: core.DebtOverdraft, Balance: dec("5000"), InterestRate: dec("48")},
			core.NewInstallmentDebt("School", dec("750"), 6, core.NewDate(2026, 3, 1)),
			loan(4, "Car", "24000", "0", "1200"),
		},
		Incomes: []core.Income{
			{ID: 1, Name: "Salary", Kind: core.IncomeSalaryWithRaises, Amount: dec("30000"), RaisesPerYear: 2, RaisePercentage: dec("15")},
		},
		Expenses:           []core.FixedExpense{{ID: 1, Name: "Rent", Amount: dec("9000")}},
		Goal:               &core.SavingsGoal{Name: "Home", Strategy: core.SavingsPercentage, Percentage: dec("10"), CompoundingRate: dec("1")},
		NetSurplus:         dec("4000"),
		Strategy:           core.StrategySnowball,
		ExtraPower:         dec("3600"),
		AggregateCardLimit: dec("60000"),
		Start:              start,
	}

	first, err := Run(in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run(in)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	a, _ := json.Marshal(first.Ledger)
	b, _ := json.Marshal(second.Ledger)
	if !bytes.Equal(a, b) {
		t.Fatal("ledgers differ between identical runs")
	}
	if !in.Debts[1].Balance.Equal(dec("5000")) {
		t.Errorf("caller debt mutated to %s", in.Debts[1].Balance)
	}
	if first.TotalInterestPaid.IsZero() {
		t.Error("expected overdraft interest to accrue")
	}
}

func TestInstallmentWaitsForFirstPayment(t *testing.T) {
	school := core.NewInstallmentDebt("School", dec("250"), 4, core.NewDate(2026, 3, 1))
	school.ID = 1
	res, err := Run(Input{
		Debts:    []core.Debt{school},
		Strategy: core.StrategyAvalanche,
		Start:    start,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// January and February 2026 are before the first payment.
	for _, row := range res.Ledger[:2] {
		if !row.Debts[0].Payment.IsZero() {
			t.Errorf("%s payment = %s, want 0", row.Label, row.Debts[0].Payment)
		}
	}
	if res.Ledger[2].Label != "March 2026" {
		t.Errorf("third label = %q, want March 2026", res.Ledger[2].Label)
	}
	if res.MonthsToFreedom != 6 {
		t.Errorf("MonthsToFreedom = %d, want 6", res.MonthsToFreedom)
	}
}

func TestCardMinimumFollowsAggregateLimit(t *testing.T) {
	if got := CardMinimum(dec("1000"), dec("50000")); !got.Equal(dec("200")) {
		t.Errorf("CardMinimum(limit 50000) = %s, want 200", got)
	}
	if got := CardMinimum(dec("1000"), dec("50001")); !got.Equal(dec("400")) {
		t.Errorf("CardMinimum(limit 50001) = %s, want 400", got)
	}
}

func TestOverdraftMinimumIsInterest(t *testing.T) {
	d := core.Debt{Kind: core.DebtOverdraft, Balance: dec("12000"), InterestRate: dec("60")}
	interest := recalculate(&d, decimal.Zero)
	if !interest.Equal(dec("600")) {
		t.Fatalf("interest = %s, want 600", interest)
	}
	if !d.MinPayment.Equal(dec("600")) || !d.Balance.Equal(dec("12600")) {
		t.Fatalf("debt after recalculate = %s/%s, want 600/12600", d.MinPayment, d.Balance)
	}

	card := core.Debt{Kind: core.DebtRevolvingCard, Balance: dec("1000"), InterestRate: dec("60")}
	if got := recalculate(&card, decimal.Zero); !got.IsZero() || !card.Balance.Equal(dec("1000")) {
		t.Fatalf("card accrued interest %s", got)
	}
}

func TestSavingsCompounding(t *testing.T) {
	goal := &core.SavingsGoal{Strategy: core.SavingsFixedAmount, MonthlyAmount: dec("100"), CompoundingRate: dec("1")}
	s := newSavings(goal, decimal.Zero)
	s.accumulate()
	if got := s.accumulate(); !got.Equal(dec("203.01")) {
		t.Fatalf("savings after two months = %s, want 203.01", got)
	}

	pct := &core.SavingsGoal{Strategy: core.SavingsPercentage, Percentage: dec("25")}
	if got := MonthlyContribution(pct, dec("-10")); !got.IsZero() {
		t.Errorf("MonthlyContribution(negative surplus) = %s, want 0", got)
	}
	if got := MonthlyContribution(pct, dec("1000")); !got.Equal(dec("250")) {
		t.Errorf("MonthlyContribution(1000) = %s, want 250", got)
	}
}

func TestAlreadyPaid(t *testing.T) {
	sim := New(Input{Debts: []core.Debt{loan(1, "Done", "0", "0", "10")}, Start: start})
	if sim.State() != Succeeded {
		t.Fatalf("State() = %v, want succeeded", sim.State())
	}
	res, err := Run(Input{Start: start})
	if err != nil || res.MonthsToFreedom != 0 || len(res.Ledger) != 0 {
		t.Fatalf("Run(empty) = %+v, %v", res, err)
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	got := addMonths(time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), 1)
	if want := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("addMonths() = %v, want %v", got, want)
	}
}
