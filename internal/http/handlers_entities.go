package http

import (
	"context"
	"net/http"

	"payoff/internal/auth"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	owner, err := s.owner(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.entities.Snapshot(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// list serves the records of the resolved owner. Empty lists encode as [].
func list[T any](s *Server, fetch func(context.Context, int64) ([]T, error)) func(http.ResponseWriter, *http.Request, auth.Principal) {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		owner, err := s.owner(r, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		items, err := fetch(r.Context(), owner)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// create decodes a Req, converts it and stores the result for the resolved
// owner.
func create[Req any, T any](s *Server, convert func(Req) (T, error), store func(context.Context, int64, T) (T, error)) func(http.ResponseWriter, *http.Request, auth.Principal) {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		owner, err := s.owner(r, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req Req
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		v, err := convert(req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		created, err := store(r.Context(), owner, v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func remove(s *Server, del func(context.Context, int64, int64) error) func(http.ResponseWriter, *http.Request, auth.Principal) {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		owner, err := s.owner(r, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := del(r.Context(), owner, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	list(s, s.entities.ListDebts)(w, r, p)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	create(s, debtRequest.toDebt, s.entities.CreateDebt)(w, r, p)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	remove(s, s.entities.DeleteDebt)(w, r, p)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	list(s, s.entities.ListIncomes)(w, r, p)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	create(s, incomeRequest.toIncome, s.entities.CreateIncome)(w, r, p)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	remove(s, s.entities.DeleteIncome)(w, r, p)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	list(s, s.entities.ListExpenses)(w, r, p)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	create(s, expenseRequest.toExpense, s.entities.CreateExpense)(w, r, p)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	remove(s, s.entities.DeleteExpense)(w, r, p)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	list(s, s.entities.ListGoals)(w, r, p)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	create(s, goalRequest.toGoal, s.entities.CreateGoal)(w, r, p)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	remove(s, s.entities.DeleteGoal)(w, r, p)
}
