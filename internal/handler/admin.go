package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"poe-item-bank/internal/service"
	"poe-item-bank/internal/store"
	"poe-item-bank/pkg/apierror"
	"poe-item-bank/pkg/response"
)

// defaultLogTail is how many admin log entries are returned when the caller
// does not ask for a specific count.
const defaultLogTail = 20

// AdminHandler handles admin configuration and diagnostics endpoints.
type AdminHandler struct {
	bank      *service.BankService
	store     store.TableStore
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(bank *service.BankService, ts store.TableStore) *AdminHandler {
	return &AdminHandler{
		bank:      bank,
		store:     ts,
		startTime: time.Now(),
	}
}

// UpdateConfigRequest is the body for PUT /admin/config. Items absent from
// the maps keep their current values.
type UpdateConfigRequest struct {
	Targets        map[string]int     `json:"targets"`
	Divines        map[string]float64 `json:"divines"`
	BankBuyPercent int                `json:"bank_buy_percent"`
}

// UpdateConfig handles PUT /api/v1/admin/config
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	cfg, err := h.bank.UpdateTargets(r.Context(), req.Targets, req.Divines, req.BankBuyPercent, actor(r))
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, cfg)
}

// Logs handles GET /api/v1/admin/logs?n=20
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	n := defaultLogTail
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(w, apierror.BadRequest("n must be a positive integer"))
			return
		}
		n = parsed
	}

	entries, err := h.bank.Logs(r.Context(), n)
	if err != nil {
		response.Error(w, mapServiceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"logs":  entries,
		"count": len(entries),
	})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["server_time"] = time.Now().UTC().Format(time.RFC3339)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if storeStats, err := h.store.Stats(r.Context()); err == nil {
		stats["store"] = storeStats
	} else {
		stats["store"] = map[string]interface{}{"status": "error", "error": err.Error()}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
