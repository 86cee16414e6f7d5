package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"poe-item-bank/internal/middleware"
	"poe-item-bank/internal/model"
	"poe-item-bank/internal/service"
	"poe-item-bank/pkg/apierror"
	"poe-item-bank/pkg/response"

	"github.com/go-chi/chi/v5"
)

// DepositHandler serves the mutating deposit endpoints. All of them sit
// behind the editor middleware.
type DepositHandler struct {
	deposits *service.DepositService
}

// NewDepositHandler creates a new deposit handler.
func NewDepositHandler(deposits *service.DepositService) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func actor(r *http.Request) string {
	if session := middleware.GetSession(r.Context()); session != nil {
		return session.Username
	}
	return ""
}

// SubmitRequest is the body for POST /bank/deposits: one user depositing
// quantities of any number of catalog items at once.
type SubmitRequest struct {
	User  string         `json:"user"`
	Items map[string]int `json:"items"`
}

// Submit handles POST /api/v1/bank/deposits
func (h *DepositHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.deposits.Submit(r.Context(), req.User, req.Items, actor(r))
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, result)
}

// Delete handles DELETE /api/v1/bank/deposits
func (h *DepositHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var rec model.Deposit
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := h.deposits.DeleteDeposit(r.Context(), rec, actor(r)); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, map[string]interface{}{"status": "deleted", "deposit": rec})
}

// Pending handles GET /api/v1/bank/pending
func (h *DepositHandler) Pending(w http.ResponseWriter, r *http.Request) {
	dupes, err := h.deposits.Pending(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"pending": dupes,
		"count":   len(dupes),
	})
}

// pendingRef extracts the queue index from the URL and the expected row from
// the body. The expected row guards against acting on a stale index: if the
// queue changed underneath the caller the service rejects the request.
func pendingRef(r *http.Request) (int, model.PendingDuplicate, *apierror.Error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, model.PendingDuplicate{}, apierror.BadRequest("invalid queue index")
	}

	var expected model.PendingDuplicate
	if err := json.NewDecoder(r.Body).Decode(&expected); err != nil {
		return 0, model.PendingDuplicate{}, apierror.BadRequest("invalid request body")
	}
	return index, expected, nil
}

// Confirm handles POST /api/v1/bank/pending/{index}/confirm
func (h *DepositHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	index, expected, apiErr := pendingRef(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}
	defer r.Body.Close()

	result, err := h.deposits.ConfirmPending(r.Context(), index, expected, actor(r))
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, result)
}

// Decline handles POST /api/v1/bank/pending/{index}/decline
func (h *DepositHandler) Decline(w http.ResponseWriter, r *http.Request) {
	index, expected, apiErr := pendingRef(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}
	defer r.Body.Close()

	if err := h.deposits.DeclinePending(r.Context(), index, expected, actor(r)); err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, map[string]interface{}{"status": "declined", "deposit": expected})
}
