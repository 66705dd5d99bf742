package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDebtValidate(t *testing.T) {
	tests := []struct {
		name string
		debt Debt
		want error
	}{
		{
			name: "revolving card",
			debt: Debt{Name: "Visa", Kind: DebtRevolvingCard, Balance: dec("1200"), InterestRate: dec("48"), CardLimit: dec("20000")},
		},
		{
			name: "revolving card without limit",
			debt: Debt{Name: "Visa", Kind: DebtRevolvingCard, Balance: dec("1200"), InterestRate: dec("48")},
			want: ErrInvalidCardLimit,
		},
		{
			name: "overdraft without minimum",
			debt: Debt{Name: "KMH", Kind: DebtOverdraft, Balance: dec("5000"), InterestRate: dec("60")},
		},
		{
			name: "loan needs minimum",
			debt: Debt{Name: "Car", Kind: DebtAmortizingLoan, Balance: dec("5000"), InterestRate: dec("30")},
			want: ErrInvalidAmount,
		},
		{
			name: "installment",
			debt: NewInstallmentDebt("School", dec("250"), 4, NewDate(2026, 1, 15)),
		},
		{
			name: "installment without first payment",
			debt: NewInstallmentDebt("School", dec("250"), 4, Date{}),
			want: ErrMissingFirstPayment,
		},
		{
			name: "installment without count",
			debt: NewInstallmentDebt("School", dec("250"), 0, NewDate(2026, 1, 15)),
			want: ErrInvalidInstallments,
		},
		{
			name: "negative rate",
			debt: Debt{Name: "X", Kind: DebtOther, Balance: dec("10"), MinPayment: dec("1"), InterestRate: dec("-1")},
			want: ErrInvalidRate,
		},
		{
			name: "unknown kind",
			debt: Debt{Name: "X", Kind: "mortgage", Balance: dec("10")},
			want: ErrInvalidDebtKind,
		},
		{
			name: "blank name",
			debt: Debt{Name: "  ", Kind: DebtOther, Balance: dec("10"), MinPayment: dec("1")},
			want: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.debt.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewInstallmentDebtBalance(t *testing.T) {
	d := NewInstallmentDebt("School", dec("250.50"), 4, NewDate(2026, 1, 15))
	if !d.Balance.Equal(dec("1002")) {
		t.Fatalf("balance = %s, want 1002", d.Balance)
	}
	if d.Kind != DebtFixedInstallment || d.RemainingInstallments != 4 {
		t.Fatalf("unexpected debt: %+v", d)
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{Name: "Salary", Kind: IncomeSalaryWithRaises, Amount: dec("1000"), RaisesPerYear: 2, RaisePercentage: dec("40")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Income{
		{Name: "", Kind: IncomeRegular, Amount: dec("1")},
		{Name: "a", Kind: "bonus", Amount: dec("1")},
		{Name: "a", Kind: IncomeRegular, Amount: dec("0")},
		{Name: "a", Kind: IncomeSalaryWithRaises, Amount: dec("1"), RaisesPerYear: 3},
		{Name: "a", Kind: IncomeSalaryWithRaises, Amount: dec("1"), RaisesPerYear: 1, RaisePercentage: dec("250")},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	if err := (SavingsGoal{Name: "Home", Strategy: SavingsFixedAmount, MonthlyAmount: dec("100")}).Validate(); err != nil {
		t.Fatalf("fixed goal: %v", err)
	}
	if err := (SavingsGoal{Name: "Home", Strategy: SavingsPercentage, Percentage: dec("90")}).Validate(); err != nil {
		t.Fatalf("percentage goal: %v", err)
	}
	if err := (SavingsGoal{Name: "Home", Strategy: SavingsPercentage, Percentage: dec("101")}).Validate(); !errors.Is(err, ErrInvalidPercentage) {
		t.Fatalf("expected ErrInvalidPercentage, got %v", err)
	}
	if err := (SavingsGoal{Name: "Home", Strategy: "other"}).Validate(); !errors.Is(err, ErrInvalidSavings) {
		t.Fatalf("expected ErrInvalidSavings, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(" Avalanche "); err != nil || s != StrategyAvalanche {
		t.Fatalf("ParseStrategy = %q, %v", s, err)
	}
	if _, err := ParseStrategy("compare"); !errors.Is(err, ErrInvalidStrategy) {
		t.Fatalf("expected ErrInvalidStrategy, got %v", err)
	}
}

func TestDateJSON(t *testing.T) {
	var d Debt
	if err := json.Unmarshal([]byte(`{"first_payment_date":"2026-03-01","balance":"10.5"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.FirstPaymentDate.String() != "2026-03-01" || !d.Balance.Equal(dec("10.5")) {
		t.Fatalf("unexpected debt: %+v", d)
	}
	if err := json.Unmarshal([]byte(`{"first_payment_date":null}`), &d); err != nil || !d.FirstPaymentDate.IsEmpty() {
		t.Fatalf("null date: %v %v", d.FirstPaymentDate, err)
	}
}

func TestSnapshotCloneAndTotals(t *testing.T) {
	s := Snapshot{
		Debts: []Debt{
			{Name: "A", Kind: DebtRevolvingCard, Balance: dec("100"), CardLimit: dec("30000")},
			{Name: "B", Kind: DebtRevolvingCard, Balance: dec("50"), CardLimit: dec("25000")},
			{Name: "C", Kind: DebtOther, Balance: dec("25"), CardLimit: dec("999")},
		},
		Goals: []SavingsGoal{{Name: "first"}, {Name: "second"}},
	}
	if got := s.AggregateCardLimit(); !got.Equal(dec("55000")) {
		t.Fatalf("AggregateCardLimit() = %s, want 55000", got)
	}
	if got := s.TotalDebt(); !got.Equal(dec("175")) {
		t.Fatalf("TotalDebt() = %s, want 175", got)
	}
	if g := s.ActiveGoal(); g == nil || g.Name != "first" {
		t.Fatalf("ActiveGoal() = %+v", g)
	}

	c := s.Clone()
	c.Debts[0].Balance = dec("0")
	if !s.Debts[0].Balance.Equal(dec("100")) {
		t.Fatalf("Clone shares debts with original")
	}
}
