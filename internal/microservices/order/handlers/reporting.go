package handlers

import (
	"net/http"
	"strconv"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

type ReportingHandler struct {
	service reporting.ReportingServiceInterface
	lg      *logger.Logger
}

func NewReportingHandler(s reporting.ReportingServiceInterface, lg *logger.Logger) *ReportingHandler {
	return &ReportingHandler{service: s, lg: lg}
}

func (rh *ReportingHandler) PeriodStats(w http.ResponseWriter, r *http.Request) {
	period, err := reporting.ParsePeriod(r.PathValue("period"))
	if err != nil {
		writeError(w, rh.lg, "period_stats_failed", err)
		return
	}
	stats, err := rh.service.PeriodStats(r.Context(), period)
	if err != nil {
		writeError(w, rh.lg, "period_stats_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rh *ReportingHandler) TopClients(w http.ResponseWriter, r *http.Request) {
	top, err := rh.service.TopClients(r.Context(), atoiDefault(r.URL.Query().Get("n"), reporting.DefaultTop))
	if err != nil {
		writeError(w, rh.lg, "top_clients_failed", err)
		return
	}
	if top == nil {
		top = []reporting.ClientTotal{}
	}
	writeJSON(w, http.StatusOK, top)
}

func (rh *ReportingHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	top, err := rh.service.TopProducts(r.Context(), atoiDefault(r.URL.Query().Get("n"), reporting.DefaultTop))
	if err != nil {
		writeError(w, rh.lg, "top_products_failed", err)
		return
	}
	if top == nil {
		top = []reporting.ProductTotal{}
	}
	writeJSON(w, http.StatusOK, top)
}

func (rh *ReportingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Terme de recherche manquant")
		return
	}
	res, err := rh.service.Search(r.Context(), q)
	if err != nil {
		writeError(w, rh.lg, "search_failed", err)
		return
	}
	if res.Orders == nil {
		res.Orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (rh *ReportingHandler) StatusOverview(w http.ResponseWriter, r *http.Request) {
	counts, err := rh.service.StatusOverview(r.Context())
	if err != nil {
		writeError(w, rh.lg, "status_overview_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// atoiDefault parses s, falling back to d when it is empty or malformed.
func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
