package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"spendwise/internal/log"
)

// formatSheets publishes to the spreadsheet instead of returning a file.
const formatSheets = "sheets"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Dashboard(r.Context(), currentUser(r).ID, monthParam(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := s.reports.Trend(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.BudgetAnalysis(r.Context(), currentUser(r).ID, monthParam(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	u := currentUser(r)

	if strings.EqualFold(strings.TrimSpace(format), formatSheets) {
		rng, err := s.reports.PublishToSheets(r.Context(), u)
		if err != nil {
			s.respondError(w, r, log.OpExport, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"range": rng})
		return
	}

	doc, err := s.reports.Export(r.Context(), u, format)
	if err != nil {
		s.respondError(w, r, log.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+doc.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
