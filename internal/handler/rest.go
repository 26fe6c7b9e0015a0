package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
	"github.com/vyrodovalexey/gildedrose/internal/shop"
	"github.com/vyrodovalexey/gildedrose/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// RESTHandler handles REST API requests for items and daily updates.
type RESTHandler struct {
	store  store.Store
	shop   DayAdvancer
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(s store.Store, advancer DayAdvancer, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		shop:   advancer,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/days", h.CurrentDay).Methods(http.MethodGet)
	api.HandleFunc("/days", h.AdvanceDay).Methods(http.MethodPost)
	api.HandleFunc("/categories", h.Classify).Methods(http.MethodGet)
	api.HandleFunc("/quality/clamp", h.ClampQuality).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.List(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		writeError(w, h.logger, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(ReadyResponse{Status: "ready"}))
}

// ListItems handles GET /api/v1/items requests. An optional category query
// parameter keeps only the items in that category.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var category inventory.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := inventory.ParseCategory(raw)
		if err != nil {
			writeErrorDetails(w, h.logger, http.StatusBadRequest, err.Error(), raw)
			return
		}
		category = parsed
	}

	items, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list items", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to retrieve items")
		return
	}

	if category != "" {
		items = filterByCategory(items, category)
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(items))
}

func filterByCategory(items []model.Item, category inventory.Category) []model.Item {
	filtered := make([]model.Item, 0, len(items))
	for i := range items {
		if items[i].Category == category {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// GetItem handles GET /api/v1/items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(item))
}

// CreateItem handles POST /api/v1/items requests.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.store.Create(r.Context(), input)
	if err != nil {
		h.handleStoreError(w, err, "create item")
		return
	}

	h.logger.Debug("item stocked",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.String("category", string(item.Category)),
	)
	writeJSON(w, h.logger, http.StatusCreated, model.NewSuccessResponse(item))
}

// UpdateItem handles PUT /api/v1/items/{id} requests.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	input, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	item, err := h.store.Update(r.Context(), id, input)
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(item))
}

// DeleteItem handles DELETE /api/v1/items/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	writeJSON(w, h.logger, http.StatusNoContent, nil)
}

// CurrentDay handles GET /api/v1/days requests.
func (h *RESTHandler) CurrentDay(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(model.DayStatus{Day: h.shop.Day()}))
}

// AdvanceDay handles POST /api/v1/days requests. Each call advances the
// inventory by exactly one day.
func (h *RESTHandler) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	report, err := h.shop.AdvanceDay(r.Context())
	if errors.Is(err, shop.ErrClosed) {
		writeError(w, h.logger, http.StatusServiceUnavailable, "shop is closed")
		return
	}
	if err != nil {
		h.logger.Error("failed to advance day", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to advance day")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(report))
}

// Classify handles GET /api/v1/categories?name=... requests.
func (h *RESTHandler) Classify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	result := model.Classification{
		Name:     name,
		Category: h.shop.Classify(name),
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(result))
}

// ClampQuality handles GET /api/v1/quality/clamp?current=..&delta=.. requests.
func (h *RESTHandler) ClampQuality(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	current, err := strconv.Atoi(query.Get("current"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "current must be an integer")
		return
	}

	delta, err := strconv.Atoi(query.Get("delta"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "delta must be an integer")
		return
	}

	result := model.ClampResult{
		Current: current,
		Delta:   delta,
		Quality: inventory.ClampQuality(current, delta),
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(result))
}

// decodeItem reads and validates an item from the request body. It writes
// the error response itself and reports whether the caller may continue.
func (h *RESTHandler) decodeItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	var input model.Item
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeErrorDetails(w, h.logger, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return &input, true
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "item not found")
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, h.logger, http.StatusBadRequest, "invalid item ID")
	case errors.Is(err, store.ErrNilItem):
		writeError(w, h.logger, http.StatusBadRequest, "item is required")
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeErrorDetails(w, logger, status, message, "")
}

// writeErrorDetails writes an error response carrying the offending input
// or the underlying cause in details.
func writeErrorDetails(w http.ResponseWriter, logger *zap.Logger, status int, message, details string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
		Details: details,
	}
	writeJSON(w, logger, status, response)
}
