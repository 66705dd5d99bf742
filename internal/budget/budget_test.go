package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Debts: []core.Debt{
			{ID: 1, Name: "Visa", Kind: core.DebtRevolvingCard, Balance: dec("10000"), CardLimit: dec("60000")},
			{ID: 2, Name: "KMH", Kind: core.DebtOverdraft, Balance: dec("6000"), InterestRate: dec("60")},
			{ID: 3, Name: "Car", Kind: core.DebtAmortizingLoan, Balance: dec("30000"), MinPayment: dec("1500")},
		},
		Incomes: []core.Income{
			{ID: 1, Name: "Salary", Kind: core.IncomeSalaryWithRaises, Amount: dec("20000"), RaisesPerYear: 1, RaisePercentage: dec("20")},
			{ID: 2, Name: "Bonus", Kind: core.IncomeOneTime, Amount: dec("5000")},
		},
		Expenses: []core.FixedExpense{
			{ID: 1, Name: "Rent", Amount: dec("7000")},
		},
		Goals: []core.SavingsGoal{
			{ID: 1, Name: "Home", Strategy: core.SavingsPercentage, Percentage: dec("50")},
		},
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(sampleSnapshot())

	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"TotalIncome", a.TotalIncome, "25000"},
		{"OneTimeIncome", a.OneTimeIncome, "5000"},
		{"AggregateCardLimit", a.AggregateCardLimit, "60000"},
		// card 40% of 10000, overdraft 300 interest, loan 1500
		{"MinimumPayments", a.MinimumPayments, "5800"},
		{"MandatoryOutflow", a.MandatoryOutflow, "12800"},
		{"NetSurplus", a.NetSurplus, "12200"},
		{"SavingsContribution", a.SavingsContribution, "6100"},
		{"ExtraPower", a.ExtraPower, "6100"},
		{"TotalDebt", a.TotalDebt, "46000"},
	}
	for _, tt := range tests {
		if !tt.got.Equal(dec(tt.want)) {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestPreparePreconditions(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	noDebts := sampleSnapshot()
	noDebts.Debts = nil
	noIncome := sampleSnapshot()
	noIncome.Incomes = nil
	broke := sampleSnapshot()
	broke.Expenses = append(broke.Expenses, core.FixedExpense{Name: "Everything", Amount: dec("20000")})

	tests := []struct {
		name     string
		snapshot core.Snapshot
		strategy core.Strategy
		want     error
	}{
		{"ok", sampleSnapshot(), core.StrategyAvalanche, nil},
		{"bad strategy", sampleSnapshot(), "random", core.ErrInvalidStrategy},
		{"no debts", noDebts, core.StrategySnowball, ErrNoDebts},
		{"no income", noIncome, core.StrategySnowball, ErrNoIncome},
		{"no extra power", broke, core.StrategySnowball, ErrNoExtraPower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Prepare(tt.snapshot, tt.strategy, start)
			if !errors.Is(err, tt.want) {
				t.Errorf("Prepare() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPrepareBuildsIndependentInput(t *testing.T) {
	s := sampleSnapshot()
	in, a, err := Prepare(s, core.StrategyAvalanche, time.Now())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !in.ExtraPower.Equal(a.ExtraPower) || in.Goal == nil {
		t.Fatalf("unexpected input: %+v", in)
	}
	in.Debts[0].Balance = decimal.Zero
	if !s.Debts[0].Balance.Equal(dec("10000")) {
		t.Error("Prepare() input aliases the snapshot")
	}
}
