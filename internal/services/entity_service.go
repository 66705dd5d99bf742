// Package services holds the use cases behind the HTTP API and the workers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"payoff/internal/auth"
	"payoff/internal/core"
	"payoff/internal/storage"
)

var ErrForbidden = errors.New("forbidden")

// ResolveOwner returns whose data p acts on. Only admins may name an owner
// other than themselves; zero means p's own data.
func ResolveOwner(p auth.Principal, requested int64) (int64, error) {
	if requested == 0 || requested == p.OwnerID {
		return p.OwnerID, nil
	}
	if !p.IsAdmin {
		return 0, ErrForbidden
	}
	return requested, nil
}

// EntityService validates and stores the records of a snapshot.
type EntityService struct {
	store storage.EntityStore
}

func NewEntityService(store storage.EntityStore) *EntityService {
	return &EntityService{store: store}
}

func (s *EntityService) Snapshot(ctx context.Context, owner int64) (core.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, owner)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *EntityService) CreateDebt(ctx context.Context, owner int64, d core.Debt) (core.Debt, error) {
	switch d.Kind {
	case core.DebtFixedInstallment:
		// the balance of an installment debt is always derived
		d = core.NewInstallmentDebt(d.Name, d.MinPayment, d.RemainingInstallments, d.FirstPaymentDate)
	case core.DebtRevolvingCard:
		d.RemainingInstallments, d.FirstPaymentDate = 0, core.Date{}
	default:
		d.CardLimit = decimal.Zero
		d.RemainingInstallments, d.FirstPaymentDate = 0, core.Date{}
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}

	created, err := s.store.CreateDebt(ctx, owner, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("save debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt created",
		"owner_id", owner,
		"debt_id", created.ID,
		"kind", created.Kind)
	return created, nil
}

func (s *EntityService) ListDebts(ctx context.Context, owner int64) ([]core.Debt, error) {
	return s.store.ListDebts(ctx, owner)
}

func (s *EntityService) DeleteDebt(ctx context.Context, owner, id int64) error {
	return s.store.DeleteDebt(ctx, owner, id)
}

func (s *EntityService) CreateIncome(ctx context.Context, owner int64, in core.Income) (core.Income, error) {
	if in.Kind != core.IncomeSalaryWithRaises {
		in.RaisesPerYear = 0
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	created, err := s.store.CreateIncome(ctx, owner, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	slog.InfoContext(ctx, "Income created", "owner_id", owner, "income_id", created.ID, "kind", created.Kind)
	return created, nil
}

func (s *EntityService) ListIncomes(ctx context.Context, owner int64) ([]core.Income, error) {
	return s.store.ListIncomes(ctx, owner)
}

func (s *EntityService) DeleteIncome(ctx context.Context, owner, id int64) error {
	return s.store.DeleteIncome(ctx, owner, id)
}

func (s *EntityService) CreateExpense(ctx context.Context, owner int64, e core.FixedExpense) (core.FixedExpense, error) {
	if err := e.Validate(); err != nil {
		return core.FixedExpense{}, err
	}

	created, err := s.store.CreateExpense(ctx, owner, e)
	if err != nil {
		return core.FixedExpense{}, fmt.Errorf("save expense: %w", err)
	}
	slog.InfoContext(ctx, "Fixed expense created", "owner_id", owner, "expense_id", created.ID)
	return created, nil
}

func (s *EntityService) ListExpenses(ctx context.Context, owner int64) ([]core.FixedExpense, error) {
	return s.store.ListExpenses(ctx, owner)
}

func (s *EntityService) DeleteExpense(ctx context.Context, owner, id int64) error {
	return s.store.DeleteExpense(ctx, owner, id)
}

func (s *EntityService) CreateGoal(ctx context.Context, owner int64, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	created, err := s.store.CreateGoal(ctx, owner, g)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save savings goal: %w", err)
	}
	slog.InfoContext(ctx, "Savings goal created", "owner_id", owner, "goal_id", created.ID, "strategy", created.Strategy)
	return created, nil
}

func (s *EntityService) ListGoals(ctx context.Context, owner int64) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx, owner)
}

func (s *EntityService) DeleteGoal(ctx context.Context, owner, id int64) error {
	return s.store.DeleteGoal(ctx, owner, id)
}
