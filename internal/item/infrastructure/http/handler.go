package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"demo/ordersvc/internal/item/application"
	"demo/ordersvc/internal/item/domain"
	"demo/ordersvc/internal/validate"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

type itemPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createItem)
	r.Get("/{id}", h.getItem)
	r.Put("/{id}", h.updateItem)
	r.Delete("/{id}", h.deleteItem)

	return r
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateItem(r.Context(), it)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.log.Info("item created", "item_id", created.ID)
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	it, err := h.service.GetItem(r.Context(), id)
	if errors.Is(err, domain.ErrItemNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	it, ok := h.decode(w, r)
	if !ok {
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), id, it)
	if errors.Is(err, domain.ErrItemNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteItem(r.Context(), id)
	if errors.Is(err, domain.ErrItemNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (domain.Item, bool) {
	var req itemPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return domain.Item{}, false
	}
	it := domain.Item{Name: req.Name, Price: req.Price}
	if err := validate.ValidateItem(it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Item{}, false
	}
	return it, true
}

func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
