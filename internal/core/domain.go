package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DebtRevolvingCard    DebtKind = "revolving_card"
	DebtOverdraft        DebtKind = "overdraft"
	DebtFixedInstallment DebtKind = "fixed_installment"
	DebtAmortizingLoan   DebtKind = "amortizing_loan"
	DebtOther            DebtKind = "other"

	IncomeSalaryWithRaises IncomeKind = "salary_with_raises"
	IncomeRegular          IncomeKind = "regular"
	IncomeOneTime          IncomeKind = "one_time"

	SavingsFixedAmount SavingsStrategy = "fixed_amount"
	SavingsPercentage  SavingsStrategy = "percentage_of_surplus"

	StrategyAvalanche Strategy = "avalanche"
	StrategySnowball  Strategy = "snowball"
)

const (
	maxNameLength      = 100
	maxRaisePercentage = 200
	maxInterestRate    = 1000
)

type (
	// DebtKind selects how interest and minimum payments are computed.
	DebtKind string

	// IncomeKind selects whether an income grows over time.
	IncomeKind string

	// SavingsStrategy selects how the monthly savings contribution is derived.
	SavingsStrategy string

	// Strategy is the repayment ordering applied to open debts.
	Strategy string

	Date struct {
		time.Time
	}

	Debt struct {
		ID      int64    `json:"id"`
		OwnerID int64    `json:"owner_id"`
		Name    string   `json:"name"`
		Kind    DebtKind `json:"kind"`
		// Balance is clamped at zero inside a projection.
		Balance decimal.Decimal `json:"balance"`
		// InterestRate is an annual percentage.
		InterestRate decimal.Decimal `json:"interest_rate"`
		// MinPayment is the installment amount for FixedInstallment debts.
		MinPayment            decimal.Decimal `json:"min_payment"`
		CardLimit             decimal.Decimal `json:"card_limit"`
		RemainingInstallments int             `json:"remaining_installments"`
		FirstPaymentDate      Date            `json:"first_payment_date"`
	}

	Income struct {
		ID              int64           `json:"id"`
		OwnerID         int64           `json:"owner_id"`
		Name            string          `json:"name"`
		Kind            IncomeKind      `json:"kind"`
		Amount          decimal.Decimal `json:"amount"`
		RaisesPerYear   int             `json:"raises_per_year"`
		RaisePercentage decimal.Decimal `json:"raise_percentage"`
	}

	FixedExpense struct {
		ID      int64           `json:"id"`
		OwnerID int64           `json:"owner_id"`
		Name    string          `json:"name"`
		Amount  decimal.Decimal `json:"amount"`
	}

	SavingsGoal struct {
		ID            int64           `json:"id"`
		OwnerID       int64           `json:"owner_id"`
		Name          string          `json:"name"`
		Strategy      SavingsStrategy `json:"strategy"`
		MonthlyAmount decimal.Decimal `json:"monthly_amount"`
		Percentage    decimal.Decimal `json:"percentage"`
		// CompoundingRate is a monthly percentage; zero disables compounding.
		CompoundingRate decimal.Decimal `json:"compounding_rate"`
	}
)

var (
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidRate         = errors.New("invalid interest rate")
	ErrInvalidDebtKind     = errors.New("invalid debt kind")
	ErrInvalidIncomeKind   = errors.New("invalid income kind")
	ErrInvalidRaises       = errors.New("raises per year must be 0, 1 or 2")
	ErrInvalidPercentage   = errors.New("invalid percentage")
	ErrInvalidInstallments = errors.New("installment count must be at least 1")
	ErrMissingFirstPayment = errors.New("first payment date is required for installment debts")
	ErrInvalidCardLimit    = errors.New("card limit must be positive for revolving cards")
	ErrInvalidSavings      = errors.New("invalid savings strategy")
	ErrInvalidStrategy     = errors.New("invalid repayment strategy")
)

func (k DebtKind) Valid() bool {
	switch k {
	case DebtRevolvingCard, DebtOverdraft, DebtFixedInstallment, DebtAmortizingLoan, DebtOther:
		return true
	}
	return false
}

func (k IncomeKind) Valid() bool {
	switch k {
	case IncomeSalaryWithRaises, IncomeRegular, IncomeOneTime:
		return true
	}
	return false
}

func (s SavingsStrategy) Valid() bool {
	switch s {
	case SavingsFixedAmount, SavingsPercentage:
		return true
	}
	return false
}

func (s Strategy) Valid() bool {
	switch s {
	case StrategyAvalanche, StrategySnowball:
		return true
	}
	return false
}

// ParseStrategy accepts the canonical names case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStrategy
	}
	return st, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as YYYY-MM-DD, or "" when empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewInstallmentDebt builds a FixedInstallment debt whose balance is the sum of
// the remaining installments.
func NewInstallmentDebt(name string, installment decimal.Decimal, count int, first Date) Debt {
	return Debt{
		Name:                  name,
		Kind:                  DebtFixedInstallment,
		Balance:               installment.Mul(decimal.NewFromInt(int64(count))),
		MinPayment:            installment,
		RemainingInstallments: count,
		FirstPaymentDate:      first,
	}
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (d Debt) Validate() error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	if !d.Kind.Valid() {
		return ErrInvalidDebtKind
	}
	if d.InterestRate.IsNegative() || d.InterestRate.GreaterThan(decimal.NewFromInt(maxInterestRate)) {
		return ErrInvalidRate
	}
	if d.MinPayment.IsNegative() || d.CardLimit.IsNegative() {
		return ErrInvalidAmount
	}

	switch d.Kind {
	case DebtFixedInstallment:
		if !d.MinPayment.IsPositive() {
			return ErrInvalidAmount
		}
		if d.RemainingInstallments < 1 {
			return ErrInvalidInstallments
		}
		if d.FirstPaymentDate.IsEmpty() {
			return ErrMissingFirstPayment
		}
	case DebtRevolvingCard:
		if !d.Balance.IsPositive() {
			return ErrInvalidAmount
		}
		if !d.CardLimit.IsPositive() {
			return ErrInvalidCardLimit
		}
	case DebtOverdraft:
		// Minimum is the monthly interest charge, derived during projection.
		if !d.Balance.IsPositive() {
			return ErrInvalidAmount
		}
	case DebtAmortizingLoan, DebtOther:
		if !d.Balance.IsPositive() || !d.MinPayment.IsPositive() {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (i Income) Validate() error {
	if err := validateName(i.Name); err != nil {
		return err
	}
	if !i.Kind.Valid() {
		return ErrInvalidIncomeKind
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if i.RaisesPerYear < 0 || i.RaisesPerYear > 2 {
		return ErrInvalidRaises
	}
	if i.RaisePercentage.IsNegative() || i.RaisePercentage.GreaterThan(decimal.NewFromInt(maxRaisePercentage)) {
		return ErrInvalidPercentage
	}
	return nil
}

func (e FixedExpense) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if err := validateName(g.Name); err != nil {
		return err
	}
	switch g.Strategy {
	case SavingsFixedAmount:
		if !g.MonthlyAmount.IsPositive() {
			return ErrInvalidAmount
		}
	case SavingsPercentage:
		if g.Percentage.IsNegative() || g.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidPercentage
		}
	default:
		return ErrInvalidSavings
	}
	if g.CompoundingRate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}
