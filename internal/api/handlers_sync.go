package api

import (
	"net/http"

	"radsync/internal/domain"
)

type syncVouchersRequest struct {
	Vouchers []domain.Voucher `json:"vouchers"`
}

type syncVouchersResponse struct {
	Success bool               `json:"success"`
	Synced  int                `json:"synced"`
	Failed  int                `json:"failed"`
	Errors  []domain.ItemError `json:"errors,omitempty"`
}

// syncVouchers projects a pushed voucher batch into the attribute store.
// All items succeeding answers 200; a mix answers 207 with the per-item
// error list.
func (h *Handler) syncVouchers(w http.ResponseWriter, r *http.Request) {
	var req syncVouchersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Vouchers) == 0 {
		writeBadRequest(w, "vouchers list is empty")
		return
	}

	report, err := h.projector.ApplyBatch(r.Context(), req.Vouchers)
	if err != nil {
		h.logger.Error("voucher batch failed", "error", err)
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if report.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, syncVouchersResponse{
		Success: report.Failed == 0,
		Synced:  report.Synced,
		Failed:  report.Failed,
		Errors:  report.Errors,
	})
}

type syncBindingsRequest struct {
	Bindings []domain.MacBinding `json:"bindings"`
}

type syncBindingsResponse struct {
	Success bool               `json:"success"`
	Synced  int                `json:"synced"`
	Updated int                `json:"updated"`
	Failed  int                `json:"failed"`
	Errors  []domain.ItemError `json:"errors,omitempty"`
}

// syncMacBindings reconciles a pushed batch of MAC bindings.
func (h *Handler) syncMacBindings(w http.ResponseWriter, r *http.Request) {
	var req syncBindingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Bindings) == 0 {
		writeBadRequest(w, "bindings list is empty")
		return
	}

	report, err := h.binder.UpsertBatch(r.Context(), req.Bindings)
	if err != nil {
		h.logger.Error("mac binding batch failed", "error", err)
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if report.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, syncBindingsResponse{
		Success: report.Failed == 0,
		Synced:  report.Synced,
		Updated: report.Updated,
		Failed:  report.Failed,
		Errors:  report.Errors,
	})
}
