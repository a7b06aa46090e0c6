package api

import (
	"net/http"

	"radsync/internal/domain"
	"radsync/internal/middleware"
)

type deleteVoucherRequest struct {
	Username string `json:"username"`
}

type deleteVoucherResponse struct {
	Success bool                `json:"success"`
	Deleted domain.DeleteCounts `json:"deleted"`
}

// deleteVoucher removes every attribute row for one username. The auth log
// is retained for audit.
func (h *Handler) deleteVoucher(w http.ResponseWriter, r *http.Request) {
	var req deleteVoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	counts, err := h.deleter.DeleteVoucher(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	h.logger.Info("voucher deleted",
		"username", req.Username,
		"check_rows", counts.CheckCount,
		"reply_rows", counts.ReplyCount,
		"principal", principal)

	writeJSON(w, http.StatusOK, deleteVoucherResponse{Success: true, Deleted: counts})
}

type toggleStatusRequest struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type toggleStatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// toggleStatus enables or disables a voucher via the sentinel row.
func (h *Handler) toggleStatus(w http.ResponseWriter, r *http.Request) {
	var req toggleStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := domain.ParseVoucherStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.toggler.SetStatus(r.Context(), req.Username, status); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	h.logger.Info("voucher status toggled",
		"username", req.Username,
		"status", string(status),
		"principal", principal)

	writeJSON(w, http.StatusOK, toggleStatusResponse{Success: true, Status: string(status)})
}

// stats serves aggregate store counts.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type healthResponse struct {
	Status    string `json:"status"`
	CheckRows int64  `json:"check_rows"`
}

// health reports store connectivity and the radcheck row count.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", CheckRows: stats.CheckRows})
}
