package http

import (
	"context"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

type expenseRequest struct {
	Amount        core.Money `json:"amount"`
	Category      string     `json:"category"`
	PaymentMethod string     `json:"payment_method"`
	Description   string     `json:"description"`
	Date          core.Date  `json:"date"`
}

type incomeRequest struct {
	Amount core.Money `json:"amount"`
	Source string     `json:"source"`
	Date   core.Date  `json:"date"`
}

type budgetRequest struct {
	Category string        `json:"category"`
	Amount   core.Money    `json:"amount"`
	Month    core.MonthKey `json:"month"`
}

type recurringRequest struct {
	Description string         `json:"description"`
	Amount      core.Money     `json:"amount"`
	Category    string         `json:"category"`
	Frequency   core.Frequency `json:"frequency"`
	NextDueDate core.Date      `json:"next_due_date"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.Expenses(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	_, err := s.ledger.AddExpense(r.Context(), currentUser(r).ID, core.Expense{
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Date:          req.Date,
	})
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Expense added")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.ledger.DeleteExpense)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.ledger.Incomes(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(incomes))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	_, err := s.ledger.AddIncome(r.Context(), currentUser(r).ID, core.Income{
		Amount: req.Amount,
		Source: req.Source,
		Date:   req.Date,
	})
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Income added")
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.ledger.DeleteIncome)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.ledger.Budgets(r.Context(), currentUser(r).ID, monthParam(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(budgets))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	err := s.ledger.SetBudget(r.Context(), currentUser(r).ID, core.Budget{
		Category: req.Category,
		Amount:   req.Amount,
		Month:    req.Month,
	})
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Budget set")
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	recurring, err := s.ledger.Recurring(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recurring))
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	_, err := s.ledger.AddRecurring(r.Context(), currentUser(r).ID, core.RecurringExpense{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Frequency:   req.Frequency,
		NextDueDate: req.NextDueDate,
	})
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Added")
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.ledger.DeleteRecurring)
}

func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fund, err := s.ledger.Fund(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, fund)
}

func (s *Server) handleUpdateFund(w http.ResponseWriter, r *http.Request) {
	var upd core.FundUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	if _, err := s.ledger.UpdateFund(r.Context(), currentUser(r).ID, upd); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Fund updated")
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	if _, err := s.ledger.SubmitFeedback(r.Context(), currentUser(r).Username, req.Rating, req.Message); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Feedback received")
}

// deleteRecord removes one of the caller's records by its {id} parameter.
func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, ownerID, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	if err := del(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	writeMessage(w, http.StatusOK, "Deleted")
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
