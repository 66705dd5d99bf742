package projection

import (
	"slices"

	"payoff/internal/core"
)

// Priority returns the indices of debts with a positive balance, highest
// priority first. Ties keep input order.
func Priority(debts []core.Debt, strategy core.Strategy) []int {
	open := make([]int, 0, len(debts))
	for i := range debts {
		if debts[i].Balance.IsPositive() {
			open = append(open, i)
		}
	}

	switch strategy {
	case core.StrategyAvalanche:
		slices.SortStableFunc(open, func(a, b int) int {
			return debts[b].InterestRate.Cmp(debts[a].InterestRate)
		})
	case core.StrategySnowball:
		slices.SortStableFunc(open, func(a, b int) int {
			return debts[a].Balance.Cmp(debts[b].Balance)
		})
	}
	return open
}
