// Package memory is an in-process implementation of storage.Store.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"payoff/internal/core"
	"payoff/internal/storage"
)

type record[T any] struct {
	id    int64
	owner int64
	value T
}

type Store struct {
	mu     sync.Mutex
	nextID int64

	users    []core.User
	debts    []record[core.Debt]
	incomes  []record[core.Income]
	expenses []record[core.FixedExpense]
	goals    []record[core.SavingsGoal]
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func owned[T any](records []record[T], owner int64) []T {
	var out []T
	for _, r := range records {
		if r.owner == owner {
			out = append(out, r.value)
		}
	}
	return out
}

func remove[T any](records []record[T], owner, id int64) ([]record[T], error) {
	i := slices.IndexFunc(records, func(r record[T]) bool { return r.id == id && r.owner == owner })
	if i < 0 {
		return records, storage.ErrNotFound
	}
	return slices.Delete(records, i, i+1), nil
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.users, func(u core.User) bool { return u.Username == username }) {
		return core.User{}, storage.ErrAlreadyExists
	}
	u := core.User{ID: s.id(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) findUser(match func(core.User) bool) (int, error) {
	i := slices.IndexFunc(s.users, match)
	if i < 0 {
		return -1, storage.ErrNotFound
	}
	return i, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findUser(func(u core.User) bool { return u.Username == username })
	if err != nil {
		return core.User{}, err
	}
	return s.users[i], nil
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findUser(func(u core.User) bool { return u.ID == id })
	if err != nil {
		return core.User{}, err
	}
	return s.users[i], nil
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users), nil
}

func (s *Store) SetAdmin(_ context.Context, username string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findUser(func(u core.User) bool { return u.Username == username })
	if err != nil {
		return err
	}
	s.users[i].IsAdmin = admin
	return nil
}

func (s *Store) SetPasswordHash(_ context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.findUser(func(u core.User) bool { return u.Username == username })
	if err != nil {
		return err
	}
	s.users[i].PasswordHash = passwordHash
	return nil
}

func (s *Store) CreateDebt(_ context.Context, owner int64, d core.Debt) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID, d.OwnerID = s.id(), owner
	s.debts = append(s.debts, record[core.Debt]{id: d.ID, owner: owner, value: d})
	return d, nil
}

func (s *Store) ListDebts(_ context.Context, owner int64) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return owned(s.debts, owner), nil
}

func (s *Store) DeleteDebt(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.debts, err = remove(s.debts, owner, id)
	return err
}

func (s *Store) CreateIncome(_ context.Context, owner int64, in core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID, in.OwnerID = s.id(), owner
	s.incomes = append(s.incomes, record[core.Income]{id: in.ID, owner: owner, value: in})
	return in, nil
}

func (s *Store) ListIncomes(_ context.Context, owner int64) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return owned(s.incomes, owner), nil
}

func (s *Store) DeleteIncome(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.incomes, err = remove(s.incomes, owner, id)
	return err
}

func (s *Store) CreateExpense(_ context.Context, owner int64, e core.FixedExpense) (core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID, e.OwnerID = s.id(), owner
	s.expenses = append(s.expenses, record[core.FixedExpense]{id: e.ID, owner: owner, value: e})
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, owner int64) ([]core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return owned(s.expenses, owner), nil
}

func (s *Store) DeleteExpense(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.expenses, err = remove(s.expenses, owner, id)
	return err
}

func (s *Store) CreateGoal(_ context.Context, owner int64, g core.SavingsGoal) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID, g.OwnerID = s.id(), owner
	s.goals = append(s.goals, record[core.SavingsGoal]{id: g.ID, owner: owner, value: g})
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, owner int64) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return owned(s.goals, owner), nil
}

func (s *Store) DeleteGoal(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	s.goals, err = remove(s.goals, owner, id)
	return err
}

func (s *Store) Snapshot(_ context.Context, owner int64) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Snapshot{
		Debts:    owned(s.debts, owner),
		Incomes:  owned(s.incomes, owner),
		Expenses: owned(s.expenses, owner),
		Goals:    owned(s.goals, owner),
	}, nil
}
