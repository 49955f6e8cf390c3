package handlers

import "net/http"

func Router(h *Handler, opts Options) *http.ServeMux {
	m := opts.Metrics
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/commandes", m.Wrap("list_orders", h.OrderHandler.ListOrders))
	mux.HandleFunc("POST /api/commandes", m.Wrap("create_order", h.OrderHandler.AddOrder))
	mux.HandleFunc("GET /api/commandes/{id}", m.Wrap("get_order", h.OrderHandler.GetOrder))
	mux.HandleFunc("PATCH /api/commandes/{id}/status", m.Wrap("update_status", h.OrderHandler.UpdateStatus))
	mux.HandleFunc("PATCH /api/commandes/{id}/comment", m.Wrap("update_comment", h.OrderHandler.UpdateComment))
	mux.HandleFunc("PATCH /api/commandes/{id}/commentaire", m.Wrap("update_comment", h.OrderHandler.UpdateComment))
	mux.HandleFunc("GET /api/commandes/{id}/timeline", m.Wrap("order_timeline", h.OrderHandler.GetTimeline))

	mux.HandleFunc("GET /api/stats", m.Wrap("status_overview", h.ReportingHandler.StatusOverview))
	mux.HandleFunc("GET /api/stats/{period}", m.Wrap("period_stats", h.ReportingHandler.PeriodStats))
	mux.HandleFunc("GET /api/top/clients", m.Wrap("top_clients", h.ReportingHandler.TopClients))
	mux.HandleFunc("GET /api/top/products", m.Wrap("top_products", h.ReportingHandler.TopProducts))
	mux.HandleFunc("GET /api/search", m.Wrap("search", h.ReportingHandler.Search))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	if opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return mux
}
