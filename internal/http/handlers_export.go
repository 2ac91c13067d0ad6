package http

import (
	"errors"
	"net/http"
	"strconv"

	"expenses/internal/export"
	applog "expenses/internal/log"
)

const exportPath = "/export.csv"

const emptyExportMessage = "No expenses to export"

// handleExportCheck lets the page ask before navigating: htmx cannot save a
// download itself, so a non-empty store answers with HX-Redirect.
func (s *Server) handleExportCheck(w http.ResponseWriter, r *http.Request) {
	if s.store.Len() == 0 {
		s.observeExport(true)
		ConflictError(emptyExportMessage).Write(w)
		return
	}
	NewHTMXResponse().Redirect(exportPath).Write(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := export.CSV(s.store.All())
	if errors.Is(err, export.ErrNothingToExport) {
		s.observeExport(true)
		ConflictError(emptyExportMessage).Write(w)
		return
	}
	if err != nil {
		s.events.LogError(ctx, "Failed to export expenses", err, applog.ComponentExport, applog.OpExport, nil)
		InternalServerError("Error exporting expenses").Write(w)
		return
	}
	s.observeExport(false)

	applog.FromContext(ctx).WithComponent(applog.ComponentExport).InfoContext(ctx, "Expenses exported",
		applog.FieldOperation, applog.OpExport, "bytes", len(body))

	NewHTMXResponse().
		Header("Content-Type", export.ContentType).
		Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`).
		Header("Content-Length", strconv.Itoa(len(body))).
		Body(body).
		Write(w)
}

func (s *Server) observeExport(empty bool) {
	if s.metrics != nil {
		s.metrics.ObserveExport(empty)
	}
}
