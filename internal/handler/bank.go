package handler

import (
	"net/http"

	"poe-item-bank/internal/service"
	"poe-item-bank/pkg/response"
)

// BankHandler serves the public read side of the bank.
type BankHandler struct {
	bank *service.BankService
}

// NewBankHandler creates a new bank handler.
func NewBankHandler(bank *service.BankService) *BankHandler {
	return &BankHandler{bank: bank}
}

// Overview handles GET /api/v1/bank/overview
func (h *BankHandler) Overview(w http.ResponseWriter, r *http.Request) {
	reports, err := h.bank.Overview(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, reports)
}

// Targets handles GET /api/v1/bank/targets
func (h *BankHandler) Targets(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.bank.Targets(r.Context())
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, cfg)
}

// Deposits handles GET /api/v1/bank/deposits?item=...
func (h *BankHandler) Deposits(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")

	deposits, err := h.bank.Deposits(r.Context(), item)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"deposits": deposits,
		"count":    len(deposits),
	})
}
