package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
	"payoff/internal/storage"
)

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := s.CreateUser(ctx, "a", "h")
	b, _ := s.CreateUser(ctx, "b", "h")

	d, err := s.CreateDebt(ctx, a.ID, core.Debt{Name: "Loan", Kind: core.DebtOther, Balance: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("CreateDebt() error = %v", err)
	}
	if d.OwnerID != a.ID || d.ID == 0 {
		t.Fatalf("CreateDebt() = %+v", d)
	}

	if got, _ := s.ListDebts(ctx, b.ID); len(got) != 0 {
		t.Errorf("ListDebts(b) = %v, want empty", got)
	}
	if err := s.DeleteDebt(ctx, b.ID, d.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteDebt(b) error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := s.DeleteDebt(ctx, a.ID, d.ID); err != nil {
		t.Errorf("DeleteDebt(a) error = %v", err)
	}
	if snap, _ := s.Snapshot(ctx, a.ID); len(snap.Debts) != 0 {
		t.Errorf("Snapshot(a).Debts = %v, want empty", snap.Debts)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.CreateUser(ctx, "root", "h1"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := s.CreateUser(ctx, "root", "h2"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("CreateUser(dup) error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := s.SetAdmin(ctx, "root", true); err != nil {
		t.Fatalf("SetAdmin() error = %v", err)
	}
	u, err := s.UserByUsername(ctx, "root")
	if err != nil || !u.IsAdmin {
		t.Fatalf("UserByUsername() = %+v, %v", u, err)
	}
	if err := s.SetPasswordHash(ctx, "ghost", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("SetPasswordHash(ghost) error = %v, want %v", err, storage.ErrNotFound)
	}
}
