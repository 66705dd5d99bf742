package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"payoff/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// deleteOwned removes one row of table belonging to owner.
func (r *SQLiteRepository) deleteOwned(ctx context.Context, table string, owner, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ? AND user_id = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Record deleted", "table", table, "id", id, "owner_id", owner)
	return nil
}

// Users

const userColumns = "id, username, password_hash, is_admin, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, 0, ?)",
		username, passwordHash, now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrAlreadyExists
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return core.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) userWhere(ctx context.Context, clause string, arg any) (core.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+clause, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.userWhere(ctx, "username = ?", username)
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	return r.userWhere(ctx, "id = ?", id)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) updateUser(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetAdmin(ctx context.Context, username string, admin bool) error {
	if err := r.updateUser(ctx, "UPDATE users SET is_admin = ? WHERE username = ?", admin, username); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User admin flag updated", "username", username, "is_admin", admin)
	return nil
}

func (r *SQLiteRepository) SetPasswordHash(ctx context.Context, username, passwordHash string) error {
	if err := r.updateUser(ctx, "UPDATE users SET password_hash = ? WHERE username = ?", passwordHash, username); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User password updated", "username", username)
	return nil
}

// Debts

func (r *SQLiteRepository) CreateDebt(ctx context.Context, owner int64, d core.Debt) (core.Debt, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (user_id, name, kind, balance, interest_rate, min_payment, card_limit, remaining_installments, first_payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		owner, d.Name, string(d.Kind), d.Balance, d.InterestRate, d.MinPayment, d.CardLimit,
		d.RemainingInstallments, d.FirstPaymentDate.String())
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	d.OwnerID = owner

	slog.InfoContext(ctx, "Debt saved to SQLite",
		"debt_id", d.ID,
		"owner_id", owner,
		"kind", d.Kind,
		"balance", d.Balance.String())
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context, owner int64) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, balance, interest_rate, min_payment, card_limit, remaining_installments, first_payment_date
		FROM debts WHERE user_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		var (
			d     core.Debt
			kind  string
			first string
		)
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &kind, &d.Balance, &d.InterestRate,
			&d.MinPayment, &d.CardLimit, &d.RemainingInstallments, &first); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		d.Kind = core.DebtKind(kind)
		if first != "" {
			if d.FirstPaymentDate, err = core.ParseDate(first); err != nil {
				return nil, fmt.Errorf("parse first payment date of debt %d: %w", d.ID, err)
			}
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, owner, id int64) error {
	return r.deleteOwned(ctx, "debts", owner, id)
}

// Incomes

func (r *SQLiteRepository) CreateIncome(ctx context.Context, owner int64, in core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (user_id, name, kind, amount, raises_per_year, raise_percentage)
		VALUES (?, ?, ?, ?, ?, ?)`,
		owner, in.Name, string(in.Kind), in.Amount, in.RaisesPerYear, in.RaisePercentage)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	if in.ID, err = res.LastInsertId(); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	in.OwnerID = owner

	slog.InfoContext(ctx, "Income saved to SQLite", "income_id", in.ID, "owner_id", owner, "kind", in.Kind)
	return in, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, owner int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, amount, raises_per_year, raise_percentage
		FROM incomes WHERE user_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in   core.Income
			kind string
		)
		if err := rows.Scan(&in.ID, &in.OwnerID, &in.Name, &kind, &in.Amount, &in.RaisesPerYear, &in.RaisePercentage); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Kind = core.IncomeKind(kind)
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, owner, id int64) error {
	return r.deleteOwned(ctx, "incomes", owner, id)
}

// Fixed expenses

func (r *SQLiteRepository) CreateExpense(ctx context.Context, owner int64, e core.FixedExpense) (core.FixedExpense, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO fixed_expenses (user_id, name, amount) VALUES (?, ?, ?)",
		owner, e.Name, e.Amount)
	if err != nil {
		return core.FixedExpense{}, fmt.Errorf("create expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.FixedExpense{}, fmt.Errorf("create expense: %w", err)
	}
	e.OwnerID = owner

	slog.InfoContext(ctx, "Fixed expense saved to SQLite", "expense_id", e.ID, "owner_id", owner)
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, owner int64) ([]core.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, amount FROM fixed_expenses WHERE user_id = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.FixedExpense
	for rows.Next() {
		var e core.FixedExpense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, owner, id int64) error {
	return r.deleteOwned(ctx, "fixed_expenses", owner, id)
}

// Savings goals

func (r *SQLiteRepository) CreateGoal(ctx context.Context, owner int64, g core.SavingsGoal) (core.SavingsGoal, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (user_id, name, strategy, monthly_amount, percentage, compounding_rate)
		VALUES (?, ?, ?, ?, ?, ?)`,
		owner, g.Name, string(g.Strategy), g.MonthlyAmount, g.Percentage, g.CompoundingRate)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	g.OwnerID = owner

	slog.InfoContext(ctx, "Savings goal saved to SQLite", "goal_id", g.ID, "owner_id", owner, "strategy", g.Strategy)
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, owner int64) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, strategy, monthly_amount, percentage, compounding_rate
		FROM savings_goals WHERE user_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var (
			g        core.SavingsGoal
			strategy string
		)
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &strategy, &g.MonthlyAmount, &g.Percentage, &g.CompoundingRate); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		g.Strategy = core.SavingsStrategy(strategy)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, owner, id int64) error {
	return r.deleteOwned(ctx, "savings_goals", owner, id)
}

// Snapshot reads every record of owner in insertion order.
func (r *SQLiteRepository) Snapshot(ctx context.Context, owner int64) (core.Snapshot, error) {
	var (
		s   core.Snapshot
		err error
	)
	if s.Debts, err = r.ListDebts(ctx, owner); err != nil {
		return core.Snapshot{}, err
	}
	if s.Incomes, err = r.ListIncomes(ctx, owner); err != nil {
		return core.Snapshot{}, err
	}
	if s.Expenses, err = r.ListExpenses(ctx, owner); err != nil {
		return core.Snapshot{}, err
	}
	if s.Goals, err = r.ListGoals(ctx, owner); err != nil {
		return core.Snapshot{}, err
	}
	return s, nil
}
