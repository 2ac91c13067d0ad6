package http

import (
	"errors"
	"net/http"
	"strings"

	"expenses/internal/form"
	applog "expenses/internal/log"
)

// handleSubmit creates a record, or updates the one being edited, and
// returns the reset form. Validation failures return the typed input with
// status 422 and leave the store untouched.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	in := ParseExpenseInput(r.PostForm)

	res, err := s.form.Submit(ctx, in)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			s.events.LogValidationFailed(ctx, verr.Fields)
			if s.metrics != nil {
				s.metrics.ObserveValidationFailure(verr.Fields)
			}
			resp := NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification("Please enter valid " + strings.Join(verr.Fields, ", ") + ".")
			s.writePartial(w, r, resp, "expense_form", s.formData(s.form.State(), verr.Fields))
			return
		}

		s.events.LogError(ctx, "Failed to save expense", err, applog.ComponentStore, applog.OpCreate,
			applog.NewFields().WithExpense(res.Expense))
		InternalServerError("Error saving expense").Write(w)
		return
	}

	op, message := applog.OpUpdate, "Expense updated"
	if res.Created {
		op, message = applog.OpCreate, "Expense added"
	}
	if res.Missing {
		message = "Expense no longer exists"
	} else {
		s.events.LogExpenseChanged(ctx, op, res.Expense, s.store.Version())
	}

	resp := NewHTMXResponse().
		TriggerExpensesChanged(s.store.Version()).
		TriggerSuccessNotification(message)
	s.writePartial(w, r, resp, "expense_form", s.formData(s.form.State(), nil))
}

// handleClear abandons the edit and returns the default form.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.form.Cancel()
	s.writePartial(w, r, NewHTMXResponse(), "expense_form", s.formData(s.form.State(), nil))
}

// handleEdit loads a record into the form. Unknown ids leave the form as is.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	resp := NewHTMXResponse()
	if s.form.BeginEdit(id) {
		resp.TriggerFormEdit(id)
	} else {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentForm).DebugContext(r.Context(), "Edit of unknown expense ignored",
			applog.FieldExpenseID, id)
	}
	s.writePartial(w, r, resp, "expense_form", s.formData(s.form.State(), nil))
}

// handleDelete removes a record once the client confirmed. Unknown ids are
// a silent no-op.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sanitizeInput(r.PathValue("id"))

	confirmed, err := IsConfirmed(r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	if !confirmed {
		PreconditionRequiredError("Delete this expense? Confirmation required.").Write(w)
		return
	}

	e, _ := s.store.Get(id)
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		s.events.LogError(ctx, "Failed to delete expense", err, applog.ComponentStore, applog.OpDelete,
			applog.NewFields().WithExpense(e))
		InternalServerError("Error deleting expense").Write(w)
		return
	}

	resp := NewHTMXResponse()
	if removed {
		s.events.LogExpenseChanged(ctx, applog.OpDelete, e, s.store.Version())
		resp.TriggerExpensesChanged(s.store.Version()).
			TriggerSuccessNotification("Expense deleted")
		if s.form.Forget(id) {
			resp.TriggerFormReset()
		}
	}
	resp.Write(w)
}
