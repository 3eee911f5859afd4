package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const defaultCartOrdersLimit = 50

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	created, err := h.carts.Create(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cartResponse{
		ID:        created.ID,
		Lines:     []cartLineResponse{},
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Delete(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCartLine(w http.ResponseWriter, r *http.Request) {
	quantity, err := queryInt64(r, "quantity")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	line, err := h.carts.AddLine(r.Context(), chi.URLParam(r, "cartID"), productID, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLineResponse(line))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getCartLine(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.GetLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLineViewResponse(view))
}

func (h *Handler) setCartLineQuantity(w http.ResponseWriter, r *http.Request) {
	quantity, err := queryInt64(r, "quantity")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	line, err := h.carts.SetLineQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLineResponse(line))
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.RemoveLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.orders.CheckAvailability(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityResponse(availability))
}

func (h *Handler) cartOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultCartOrdersLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders, err := h.orders.ListByCart(r.Context(), chi.URLParam(r, "cartID"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}
