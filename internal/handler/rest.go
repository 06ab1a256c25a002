package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mpetrov/crm-backend/internal/model"
	"github.com/mpetrov/crm-backend/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// APIPrefix is the base path of the clients API.
const APIPrefix = "/api/clients"

// EventPublisher receives change notifications after successful mutations.
type EventPublisher interface {
	Publish(event model.ClientEvent)
}

// RESTHandler handles REST API requests for clients.
type RESTHandler struct {
	store  store.Store
	logger *zap.Logger
	events EventPublisher
}

// NewRESTHandler creates a new RESTHandler instance. events may be nil
// when no subscriber transport is wired in.
func NewRESTHandler(s store.Store, logger *zap.Logger, events EventPublisher) *RESTHandler {
	return &RESTHandler{
		store:  s,
		logger: logger,
		events: events,
	}
}

// RegisterRoutes registers the REST API routes with the router. Requests
// outside the registered paths get the JSON not-found payload.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc(APIPrefix, h.ListClients).Methods(http.MethodGet)
	router.HandleFunc(APIPrefix, h.CreateClient).Methods(http.MethodPost)
	router.HandleFunc(APIPrefix+"/{id}", h.GetClient).Methods(http.MethodGet)
	router.HandleFunc(APIPrefix+"/{id}", h.UpdateClient).Methods(http.MethodPatch)
	router.HandleFunc(APIPrefix+"/{id}", h.DeleteClient).Methods(http.MethodDelete)

	// Unknown paths and unsupported methods both get the JSON 404 payload.
	router.NotFoundHandler = http.HandlerFunc(h.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests. The service is ready when the
// store backend can be read.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.List(r.Context(), store.ListParams{}); err != nil {
		h.logger.Error("readiness check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// NotFound handles requests outside the API surface.
func (h *RESTHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	h.writeMessage(w, http.StatusNotFound, "Not Found")
}

// ListClients handles GET /api/clients requests. The optional search
// query parameter filters by case-insensitive substring.
func (h *RESTHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	params := store.ListParams{
		Search: r.URL.Query().Get("search"),
	}

	clients, err := h.store.List(r.Context(), params)
	if err != nil {
		h.handleStoreError(w, err, "list clients")
		return
	}

	if clients == nil {
		clients = []model.Client{}
	}

	h.writeJSON(w, http.StatusOK, clients)
}

// GetClient handles GET /api/clients/{id} requests.
func (h *RESTHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	client, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get client")
		return
	}

	h.writeJSON(w, http.StatusOK, client)
}

// CreateClient handles POST /api/clients requests. A created client is
// answered with 201 and a Location header pointing at the new resource.
func (h *RESTHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var input model.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeMessage(w, http.StatusBadRequest, "Invalid JSON Body")
		return
	}

	client, err := h.store.Create(r.Context(), input)
	if err != nil {
		h.handleStoreError(w, err, "create client")
		return
	}

	w.Header().Set("Access-Control-Expose-Headers", "Location")
	w.Header().Set("Location", APIPrefix+"/"+client.ID)
	h.writeJSON(w, http.StatusCreated, client)

	h.publish(model.EventCreated, client.ID)
}

// UpdateClient handles PATCH /api/clients/{id} requests. Omitted fields
// keep their stored values; the merged record is revalidated as a whole.
func (h *RESTHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input model.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeMessage(w, http.StatusBadRequest, "Invalid JSON Body")
		return
	}

	client, err := h.store.Update(r.Context(), id, input)
	if err != nil {
		h.handleStoreError(w, err, "update client")
		return
	}

	h.writeJSON(w, http.StatusOK, client)

	h.publish(model.EventUpdated, client.ID)
}

// DeleteClient handles DELETE /api/clients/{id} requests.
func (h *RESTHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete client")
		return
	}

	h.writeJSON(w, http.StatusOK, struct{}{})

	h.publish(model.EventDeleted, id)
}

// publish sends a change event when a subscriber transport is attached.
func (h *RESTHandler) publish(event, id string) {
	if h.events == nil {
		return
	}
	h.events.Publish(model.NewClientEvent(event, id))
}

// handleStoreError translates store failures into HTTP responses. This is
// the only place where typed failures become status codes.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	var verr *model.ValidationError

	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, model.ValidationFailureResponse{
			Errors: verr.Errors,
		})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		h.writeMessage(w, http.StatusNotFound, "Client Not Found")
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, "Server Error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeMessage writes a single-message error response.
func (h *RESTHandler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.MessageResponse{Message: message})
}
