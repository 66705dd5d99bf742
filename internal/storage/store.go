package storage

import (
	"context"
	"errors"

	"payoff/internal/core"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	UserByUsername(ctx context.Context, username string) (core.User, error)
	UserByID(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) error
	SetPasswordHash(ctx context.Context, username, passwordHash string) error
}

// EntityStore persists the records of a snapshot. Every operation is scoped to
// an owner; records of other owners are invisible.
type EntityStore interface {
	CreateDebt(ctx context.Context, owner int64, d core.Debt) (core.Debt, error)
	ListDebts(ctx context.Context, owner int64) ([]core.Debt, error)
	DeleteDebt(ctx context.Context, owner, id int64) error

	CreateIncome(ctx context.Context, owner int64, in core.Income) (core.Income, error)
	ListIncomes(ctx context.Context, owner int64) ([]core.Income, error)
	DeleteIncome(ctx context.Context, owner, id int64) error

	CreateExpense(ctx context.Context, owner int64, e core.FixedExpense) (core.FixedExpense, error)
	ListExpenses(ctx context.Context, owner int64) ([]core.FixedExpense, error)
	DeleteExpense(ctx context.Context, owner, id int64) error

	CreateGoal(ctx context.Context, owner int64, g core.SavingsGoal) (core.SavingsGoal, error)
	ListGoals(ctx context.Context, owner int64) ([]core.SavingsGoal, error)
	DeleteGoal(ctx context.Context, owner, id int64) error

	Snapshot(ctx context.Context, owner int64) (core.Snapshot, error)
}

type Store interface {
	UserStore
	EntityStore
	Close() error
}
