package projection

import (
	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

const (
	// HorizonMonths bounds a projection at fifty years.
	HorizonMonths = 600

	cardLimitThreshold = 50000
)

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	highCardFactor = decimal.RequireFromString("0.40")
	lowCardFactor  = decimal.RequireFromString("0.20")
)

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(hundred).Div(monthsPerYear)
}

// MonthlyInterest is one month of interest on balance, rounded to cents.
func MonthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return core.RoundCents(balance.Mul(annualRate).Div(hundred.Mul(monthsPerYear)))
}

// CardMinimum is the required monthly payment on a revolving card. Owners with
// more than 50000 of total card limit pay 40% of the balance, others 20%.
func CardMinimum(balance, aggregateLimit decimal.Decimal) decimal.Decimal {
	factor := lowCardFactor
	if aggregateLimit.GreaterThan(decimal.NewFromInt(cardLimitThreshold)) {
		factor = highCardFactor
	}
	return core.RoundCents(balance.Mul(factor))
}

// BaselineMinimum is the minimum payment owed on d before any month has been
// simulated.
func BaselineMinimum(d core.Debt, aggregateLimit decimal.Decimal) decimal.Decimal {
	switch d.Kind {
	case core.DebtRevolvingCard:
		return CardMinimum(d.Balance, aggregateLimit)
	case core.DebtOverdraft:
		return MonthlyInterest(d.Balance, d.InterestRate)
	case core.DebtFixedInstallment, core.DebtAmortizingLoan, core.DebtOther:
		return d.MinPayment
	}
	return d.MinPayment
}

// recalculate accrues this month's interest on d and refreshes its minimum
// payment. It returns the interest added to the balance.
func recalculate(d *core.Debt, aggregateLimit decimal.Decimal) decimal.Decimal {
	if !d.Balance.IsPositive() {
		return decimal.Zero
	}

	switch d.Kind {
	case core.DebtRevolvingCard:
		d.MinPayment = CardMinimum(d.Balance, aggregateLimit)
	case core.DebtOverdraft:
		interest := MonthlyInterest(d.Balance, d.InterestRate)
		d.Balance = d.Balance.Add(interest)
		d.MinPayment = interest
		return interest
	case core.DebtOther:
		interest := MonthlyInterest(d.Balance, d.InterestRate)
		d.Balance = d.Balance.Add(interest)
		return interest
	case core.DebtFixedInstallment, core.DebtAmortizingLoan:
		// fixed minimum, set at creation
	}
	return decimal.Zero
}
