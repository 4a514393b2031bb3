package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"demo/ordersvc/internal/order/application"
	"demo/ordersvc/internal/order/domain"
	"demo/ordersvc/internal/validate"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type orderItemPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderPayload struct {
	Timestamp int64              `json:"timestamp"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Notes     string             `json:"notes"`
	Items     []orderItemPayload `json:"items"`
}

func (p orderPayload) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, domain.OrderItem{Name: it.Name, Price: it.Price})
	}
	return domain.Order{
		Timestamp: p.Timestamp,
		Customer:  p.Name,
		Phone:     p.Phone,
		Notes:     p.Notes,
		Items:     items,
	}
}

type orderDetailItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderDetail struct {
	ID        int64             `json:"id"`
	Timestamp int64             `json:"timestamp"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Notes     string            `json:"notes"`
	Items     []orderDetailItem `json:"items"`
}

func detailFrom(o domain.Order) orderDetail {
	items := make([]orderDetailItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderDetailItem{ID: it.ID, Name: it.Name, Price: it.Price})
	}
	return orderDetail{
		ID:        o.ID,
		Timestamp: o.Timestamp,
		Name:      o.Customer,
		Phone:     o.Phone,
		Notes:     o.Notes,
		Items:     items,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createOrder)
	r.Get("/{id}", h.getOrder)
	r.Put("/{id}", h.updateOrder)
	r.Delete("/{id}", h.deleteOrder)

	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req orderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	o := req.toDomain()
	if err := validate.ValidateOrder(o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateOrder(ctx, o, traceparentFrom(ctx, r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.log.Info("order created", "order_id", id)

	// The contract echoes the submitted payload; generated ids are not
	// round-tripped.
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	o, err := h.service.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, detailFrom(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req orderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	o := req.toDomain()
	if err := validate.ValidateOrder(o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.service.UpdateOrder(ctx, id, o, traceparentFrom(ctx, r))
	if errors.Is(err, domain.ErrOrderNotFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.log.Info("order updated", "order_id", id)
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteOrder(ctx, id, traceparentFrom(ctx, r))
	if errors.Is(err, domain.ErrOrderNotFound) {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.log.Info("order deleted", "order_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func traceparentFrom(ctx context.Context, r *http.Request) string {
	if tp := r.Header.Get("traceparent"); tp != "" {
		return tp
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.Get("traceparent")
}
