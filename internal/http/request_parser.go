// Package http serves the JSON API.
//
// This file decodes request bodies and query parameters into domain values.
// Amounts travel as strings so that both "12.34" and "12,34" are accepted.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

const maxBodyBytes = 64 << 10

var (
	errBadJSON = errors.New("malformed JSON body")
	errBadID   = errors.New("invalid id")
	errBadDate = errors.New("dates must be YYYY-MM-DD")
)

// decodeJSON reads exactly one JSON object from r into dst, rejecting
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadJSON)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// ownerParam parses the optional ?owner= query parameter; 0 means "self".
func ownerParam(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("owner"))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func optionalAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func optionalRate(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseRate(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type strategyRequest struct {
	Strategy string `json:"strategy"`
}

type debtRequest struct {
	Name                  string `json:"name"`
	Kind                  string `json:"kind"`
	Balance               string `json:"balance"`
	InterestRate          string `json:"interest_rate"`
	MinPayment            string `json:"min_payment"`
	CardLimit             string `json:"card_limit"`
	RemainingInstallments int    `json:"remaining_installments"`
	FirstPaymentDate      string `json:"first_payment_date"`
}

func (req debtRequest) toDebt() (core.Debt, error) {
	d := core.Debt{
		Name:                  sanitizeInput(req.Name),
		Kind:                  core.DebtKind(strings.TrimSpace(req.Kind)),
		RemainingInstallments: req.RemainingInstallments,
	}
	var err error
	if d.Balance, err = optionalAmount("balance", req.Balance); err != nil {
		return core.Debt{}, err
	}
	if d.InterestRate, err = optionalRate("interest_rate", req.InterestRate); err != nil {
		return core.Debt{}, err
	}
	if d.MinPayment, err = optionalAmount("min_payment", req.MinPayment); err != nil {
		return core.Debt{}, err
	}
	if d.CardLimit, err = optionalAmount("card_limit", req.CardLimit); err != nil {
		return core.Debt{}, err
	}
	if strings.TrimSpace(req.FirstPaymentDate) != "" {
		if d.FirstPaymentDate, err = core.ParseDate(req.FirstPaymentDate); err != nil {
			return core.Debt{}, errBadDate
		}
	}
	return d, nil
}

type incomeRequest struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	RaisesPerYear   int    `json:"raises_per_year"`
	RaisePercentage string `json:"raise_percentage"`
}

func (req incomeRequest) toIncome() (core.Income, error) {
	in := core.Income{
		Name:          sanitizeInput(req.Name),
		Kind:          core.IncomeKind(strings.TrimSpace(req.Kind)),
		RaisesPerYear: req.RaisesPerYear,
	}
	var err error
	if in.Amount, err = optionalAmount("amount", req.Amount); err != nil {
		return core.Income{}, err
	}
	if in.RaisePercentage, err = optionalRate("raise_percentage", req.RaisePercentage); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

type expenseRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

func (req expenseRequest) toExpense() (core.FixedExpense, error) {
	amount, err := optionalAmount("amount", req.Amount)
	if err != nil {
		return core.FixedExpense{}, err
	}
	return core.FixedExpense{Name: sanitizeInput(req.Name), Amount: amount}, nil
}

type goalRequest struct {
	Name            string `json:"name"`
	Strategy        string `json:"strategy"`
	MonthlyAmount   string `json:"monthly_amount"`
	Percentage      string `json:"percentage"`
	CompoundingRate string `json:"compounding_rate"`
}

func (req goalRequest) toGoal() (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		Name:     sanitizeInput(req.Name),
		Strategy: core.SavingsStrategy(strings.TrimSpace(req.Strategy)),
	}
	var err error
	if g.MonthlyAmount, err = optionalAmount("monthly_amount", req.MonthlyAmount); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.Percentage, err = optionalRate("percentage", req.Percentage); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.CompoundingRate, err = optionalRate("compounding_rate", req.CompoundingRate); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}
