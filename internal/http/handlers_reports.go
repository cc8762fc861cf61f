package http

import (
	"net/http"
	"strconv"

	"clubledger/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	week, year, err := s.weekYearParams(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary, err := s.engine.Summary(r.Context(), week, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	week, year, err := s.weekYearParams(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	stats, err := s.engine.CurrentStats(r.Context(), week, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// fullYearReport serves the unfiltered report from the per-year cache,
// recomputing on miss. Month filtering happens after retrieval so a cached
// year serves every month view.
func (s *Server) fullYearReport(r *http.Request, year int) (core.WeeklyAnalysisReport, error) {
	key := strconv.Itoa(year)
	if report, found := s.reportCache.Get(key); found {
		return report, nil
	}

	report, err := s.assembler.WeeklyAnalysis(r.Context(), year, 0)
	if err != nil {
		return core.WeeklyAnalysisReport{}, err
	}
	s.reportCache.Set(key, report)
	return report, nil
}

func (s *Server) weeklyAnalysisReport(r *http.Request) (core.WeeklyAnalysisReport, error) {
	year, month, err := s.yearMonthParams(r)
	if err != nil {
		return core.WeeklyAnalysisReport{}, err
	}

	report, err := s.fullYearReport(r, year)
	if err != nil {
		return core.WeeklyAnalysisReport{}, err
	}
	return s.assembler.FilterMonth(report, month), nil
}

func (s *Server) handleWeeklyAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := s.weeklyAnalysisReport(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type exportResponse struct {
	Year    int                `json:"year"`
	Rows    []core.ExportRow   `json:"rows"`
	Summary core.PeriodSummary `json:"summary"`
}

func (s *Server) handleWeeklyAnalysisExport(w http.ResponseWriter, r *http.Request) {
	report, err := s.weeklyAnalysisReport(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	rows := s.assembler.ExportRows(report)
	if rows == nil {
		rows = []core.ExportRow{}
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Year:    report.Year,
		Rows:    rows,
		Summary: report.Summary,
	})
}
