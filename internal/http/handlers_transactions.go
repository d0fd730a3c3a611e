package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fiscora/internal/core"
)

// transactionID reads the {id} path segment. It writes a 400 and returns
// false when the segment is not a positive integer.
func transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return positiveID(w, chi.URLParam(r, "id"))
}

func positiveID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		BadRequestError("invalid id").Write(w)
		return 0, false
	}
	return id, true
}

// listFilter builds the listing filter. Without month and year the listing
// spans every date; a year alone selects the whole year.
func (s *Server) listFilter(r *http.Request) core.TransactionFilter {
	q := r.URL.Query()
	var f core.TransactionFilter
	if incoming, ok := parseIncoming(q); ok {
		f.Incoming = &incoming
	}
	hasYear, hasMonth := q.Get("year") != "", q.Get("month") != ""
	if !hasYear && !hasMonth {
		return f
	}
	p := ParseMonthParams(q, s.now())
	if hasMonth {
		f.Period = core.MonthPeriod(p.Year, p.Month)
	} else {
		f.Period = core.YearPeriod(p.Year)
	}
	return f
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.List(r.Context(), s.listFilter(r))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	tx, err := s.svc.Transactions.Create(r.Context(), p.TransactionForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(tx.ID, 10)).
		Body(tx).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}
	tx, err := s.svc.Transactions.Update(r.Context(), id, p.TransactionForm())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), id); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleCatalog serves the choices offered in the transaction form.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	var (
		values []string
		err    error
	)
	switch chi.URLParam(r, "kind") {
	case "intervals":
		values, err = s.svc.Catalogs.Intervals(r.Context())
	case "income":
		values, err = s.svc.Catalogs.IncomeTypes(r.Context())
	case "expense":
		values, err = s.svc.Catalogs.ExpenseTypes(r.Context())
	default:
		NotFoundError("unknown catalog").Write(w)
		return
	}
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	if values == nil {
		values = []string{}
	}
	NewJSONResponse().Body(values).Write(w)
}
