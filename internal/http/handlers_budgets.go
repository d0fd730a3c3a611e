package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

func budgetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		BadRequestError("invalid budget id").Write(w)
		return "", false
	}
	return id, true
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(budgets).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	b, err := s.svc.Budgets.Get(r.Context(), id)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), p.BudgetForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/budgets/"+url.PathEscape(b.ID)).
		Body(b).
		Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	b, err := s.svc.Budgets.Update(r.Context(), id, p.BudgetForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), id); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleAddBudgetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	e, err := s.svc.Budgets.AddExpense(r.Context(), id, p.BudgetExpenseForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(e).Write(w)
}

func (s *Server) handleUpdateBudgetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	expenseID, ok := positiveID(w, chi.URLParam(r, "expenseID"))
	if !ok {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	e, err := s.svc.Budgets.UpdateExpense(r.Context(), id, expenseID, p.BudgetExpenseForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(e).Write(w)
}

func (s *Server) handleDeleteBudgetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := budgetID(w, r)
	if !ok {
		return
	}
	expenseID, ok := positiveID(w, chi.URLParam(r, "expenseID"))
	if !ok {
		return
	}
	if err := s.svc.Budgets.DeleteExpense(r.Context(), id, expenseID); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
