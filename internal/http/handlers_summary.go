package http

import (
	"net/http"
	"strconv"

	"fiscora/internal/core"
)

// yearSummaryBody is the year summary with its total alongside.
type yearSummaryBody struct {
	Year   int                `json:"year"`
	Months core.YearSummary   `json:"months"`
	Total  core.PeriodSummary `json:"total"`
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	sum, err := s.svc.Summaries.Month(r.Context(), p.Year, p.Month)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}

func (s *Server) handleYearSummary(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	sum, err := s.svc.Summaries.Year(r.Context(), p.Year)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(yearSummaryBody{Year: p.Year, Months: sum, Total: sum.Total()}).Write(w)
}

// handleMonthByType breaks the month down by type. income defaults to
// false, so the expense side is served when it is absent.
func (s *Server) handleMonthByType(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := ParseMonthParams(q, s.now())
	incoming, _ := parseIncoming(q)
	b, err := s.svc.Summaries.MonthByType(r.Context(), p.Year, p.Month, incoming)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleYearByType(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := ParseMonthParams(q, s.now())
	incoming, _ := parseIncoming(q)
	average, _ := strconv.ParseBool(q.Get("average"))

	var (
		b   core.TypeBreakdown
		err error
	)
	if average {
		b, err = s.svc.Summaries.YearAverageByType(r.Context(), p.Year, incoming)
	} else {
		b, err = s.svc.Summaries.YearByType(r.Context(), p.Year, incoming)
	}
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}
