package http

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/form"
	applog "expenses/internal/log"
	"expenses/internal/view"
)

type (
	formData struct {
		Input      form.Input
		EditingID  string
		Categories []string
		Invalid    map[string]bool
	}

	listData struct {
		Rows  []view.Row
		Empty string
	}

	summaryData struct {
		Total   string
		Monthly string
		Count   int
	}

	filterData struct {
		Options []view.MonthOption
	}

	chartData struct {
		Layout view.ChartLayout
		Month  string
	}

	pageData struct {
		Form    formData
		List    listData
		Summary summaryData
		Filter  filterData
	}
)

// Editing drives the "Add Expense" / "Update" button label.
func (f formData) Editing() bool { return f.EditingID != "" }

func (s *Server) formData(state form.State, invalid []string) formData {
	categories := slices.Clone(core.Categories)
	if c := state.Input.Category; c != "" && !slices.Contains(categories, c) {
		categories = append(categories, c)
	}
	marked := make(map[string]bool, len(invalid))
	for _, f := range invalid {
		marked[f] = true
	}
	return formData{
		Input:      state.Input,
		EditingID:  state.EditingID,
		Categories: categories,
		Invalid:    marked,
	}
}

func (s *Server) listData(list []core.Expense) listData {
	return listData{
		Rows:  view.Rows(list, view.Options{Currency: s.cfg.Currency, DateLayout: s.cfg.DateLayout}),
		Empty: view.EmptyMessage,
	}
}

func (s *Server) summaryData(list []core.Expense) summaryData {
	sum := core.Summarize(list, s.now())
	return summaryData{
		Total:   s.formatAmount(sum.Total),
		Monthly: s.formatAmount(sum.Monthly),
		Count:   sum.Count,
	}
}

func (s *Server) formatAmount(d decimal.Decimal) string {
	return core.FormatAmount(d, s.cfg.Currency)
}

// writePartial renders name and writes it with status, failing with 500.
func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	body, err := s.render(r.Context(), name, data)
	if err != nil {
		InternalServerError("Error rendering page").Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady reports not ready until templates are parsed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}
	checks["store"] = map[string]interface{}{
		"records": s.store.Len(),
		"version": s.store.Version(),
	}
	checks["cache"] = map[string]interface{}{
		"chart_entries": s.chartCache.Size(),
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The CLI may have written to the slot since the last mutation here.
	if _, err := s.store.Reload(r.Context()); err != nil {
		s.logger.WithComponent(applog.ComponentStore).WarnContext(r.Context(), "Failed to reload expenses",
			applog.FieldError, err)
	}
	list := s.store.All()
	data := pageData{
		Form:    s.formData(s.form.State(), nil),
		List:    s.listData(list),
		Summary: s.summaryData(list),
		Filter:  filterData{Options: view.MonthOptions(list, view.AllMonths)},
	}

	if s.templates == nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	body, err := s.render(r.Context(), "index.html", data)
	if err != nil {
		http.Error(w, "error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleFormPartial(w http.ResponseWriter, r *http.Request) {
	s.writePartial(w, r, NewHTMXResponse(), "expense_form", s.formData(s.form.State(), nil))
}

func (s *Server) handleListPartial(w http.ResponseWriter, r *http.Request) {
	s.writePartial(w, r, NewHTMXResponse(), "expense_list", s.listData(s.store.All()))
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	s.writePartial(w, r, NewHTMXResponse(), "summary", s.summaryData(s.store.All()))
}

// handleFilterPartial rebuilds the month options, keeping the current
// selection when that month still exists.
func (s *Server) handleFilterPartial(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("month")
	data := filterData{Options: view.MonthOptions(s.store.All(), selected)}
	s.writePartial(w, r, NewHTMXResponse(), "month_filter", data)
}

// handleChartPartial renders the six-month SVG. Output is cached by store
// version, width and window end month.
func (s *Server) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	params := ParseChartParams(r.URL.Query())
	end := view.WindowEnd(params.Month, s.now())
	key := chartCacheKey(s.store.Version(), params.Width, core.MonthOf(end))

	if body, ok := s.chartCache.Get(key); ok {
		s.observeChartCache(true)
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Chart cache hit", "key", key)
		NewHTMXResponse().BodyHTML(body).Write(w)
		return
	}
	s.observeChartCache(false)

	buckets := view.Bin(s.store.All(), end)
	layout := view.Layout(buckets, params.Width, s.formatAmount)
	body, err := s.render(r.Context(), "chart", chartData{Layout: layout, Month: params.Month})
	if err != nil {
		InternalServerError("Error rendering chart").Write(w)
		return
	}
	s.chartCache.Set(key, body)
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func chartCacheKey(version uint64, width int, end core.MonthKey) string {
	return strconv.FormatUint(version, 10) + "|" + strconv.Itoa(width) + "|" + end.String()
}

func (s *Server) observeChartCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveChartCache(hit)
	}
}
