package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/ebill/httpx"
	"github.com/diewo77/ebill/internal/metrics"
	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/receipt"
	"github.com/diewo77/ebill/internal/services"
	"github.com/diewo77/ebill/validation"
	"github.com/diewo77/ebill/view"
)

type BillHandler struct {
	bills    *services.BillService
	receipts *receipt.Renderer
	metrics  *metrics.Metrics
}

func NewBillHandler(bills *services.BillService, receipts *receipt.Renderer, m *metrics.Metrics) *BillHandler {
	return &BillHandler{bills: bills, receipts: receipts, metrics: m}
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.List(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, bills)
		return
	}
	h.render(w, r, http.StatusOK, "bills/index.html", map[string]any{"Bills": bills})
}

func (h *BillHandler) Show(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.load(w, r, "show")
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, bill)
		return
	}
	h.render(w, r, http.StatusOK, "bills/show.html", map[string]any{"Bill": bill})
}

func (h *BillHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, newBillForm(), nil)
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	bill, form, ok := h.readBill(w, r, "create", 0)
	if !ok {
		return
	}

	created, err := h.bills.Create(r.Context(), bill)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		h.observe("create", err)
		h.invalid(w, r, form, verr.Violations)
		return
	}
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	h.observe("create", nil)

	if httpx.WantsJSON(r) {
		w.Header().Set("Location", fmt.Sprintf("/bills/%d", created.ID))
		httpx.JSON(w, http.StatusCreated, created)
		return
	}
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

func (h *BillHandler) Edit(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.load(w, r, "edit")
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, formFromBill(bill), nil)
}

func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	bill, form, ok := h.readBill(w, r, "edit", id)
	if !ok {
		return
	}

	updated, err := h.bills.Edit(r.Context(), bill)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		h.observe("edit", err)
		h.invalid(w, r, form, verr.Violations)
		return
	case errors.Is(err, services.ErrNotFound):
		h.observe("edit", err)
		h.notFound(w, r)
		return
	case err != nil:
		h.fail(w, r, "edit", err)
		return
	}
	h.observe("edit", nil)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, updated)
		return
	}
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

// ConfirmDelete shows the bill before the destructive POST.
func (h *BillHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.load(w, r, "delete")
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "bills/delete.html", map[string]any{"Bill": bill})
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.bills.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	h.observe("delete", nil)

	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

func (h *BillHandler) PDF(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.load(w, r, "export")
	if !ok {
		return
	}
	body, err := h.receipts.Render(bill)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}
	h.observe("export", nil)

	w.Header().Set("Content-Type", receipt.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, receipt.Filename(bill)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// readBill decodes a bill from a JSON body or the HTML form and stamps it
// with id (zero for a new bill). Parse-level violations are answered here
// together with the field constraints.
func (h *BillHandler) readBill(w http.ResponseWriter, r *http.Request, op string, id uint) (*models.Bill, BillForm, bool) {
	if httpx.IsJSONBody(r) {
		var bill models.Bill
		if err := httpx.DecodeJSON(r, &bill); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return nil, BillForm{}, false
		}
		bill.ID = id
		return &bill, formFromBill(&bill), true
	}

	form, err := parseBillForm(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, form, false
	}
	form.ID = id
	bill, v := form.Bill()
	if !v.Empty() {
		v.Merge(validation.Struct(bill))
		slog.WarnContext(r.Context(), "bill form rejected", "op", op, "violations", v)
		h.observe(op, &services.ValidationError{Violations: v})
		h.invalid(w, r, form, v)
		return nil, form, false
	}
	return bill, form, true
}

func (h *BillHandler) load(w http.ResponseWriter, r *http.Request, op string) (*models.Bill, bool) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return nil, false
	}
	bill, err := h.bills.Get(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		h.observe(op, err)
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.fail(w, r, op, err)
		return nil, false
	}
	return bill, true
}

func (h *BillHandler) invalid(w http.ResponseWriter, r *http.Request, form BillForm, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	h.renderForm(w, r, http.StatusUnprocessableEntity, form, v)
}

func (h *BillHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form BillForm, v validation.Violations) {
	title, action := "New bill", "/bills"
	if form.ID != 0 {
		title, action = fmt.Sprintf("Edit bill %d", form.ID), fmt.Sprintf("/bills/%d", form.ID)
	}
	h.render(w, r, status, "bills/form.html", map[string]any{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": v,
	})
}

func (h *BillHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render failed", "template", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *BillHandler) notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	http.NotFound(w, r)
}

func (h *BillHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.observe(op, err)
	slog.ErrorContext(r.Context(), "bill operation failed", "op", op, "err", err)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *BillHandler) observe(op string, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveBillOp(op, outcome(err))
}

func outcome(err error) string {
	var verr *services.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
