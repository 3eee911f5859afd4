package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
)

const placeOrderMethod = "POST /orders"

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	cartID := strings.TrimSpace(r.URL.Query().Get("cartId"))
	key := r.Header.Get(IdempotencyKeyHeader)
	hash := idempotency.RequestHash(placeOrderMethod, []byte(cartID))

	body, replayed, err := h.guard.Do(r.Context(), key, hash, func(ctx context.Context) ([]byte, error) {
		order, err := h.orders.Place(ctx, cartID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(toOrderResponse(order))
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if replayed {
		w.Header().Set(ReplayedHeader, "true")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Pay(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	if err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), reason); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) finishOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Finish(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) orderTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.orders.Timeline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimelineResponse(events))
}
