package http

import (
	"net/http"
)

// handleDashboard serves the overview for ?month&year, defaulting to the
// current month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	d, err := s.svc.Dashboard.Load(r.Context(), p.Year, p.Month)
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}
