package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func decodeProduct(r *http.Request) (productRequest, error) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return productRequest{}, invalidParam("body", err)
	}
	return req, nil
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProduct(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize", domain.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ascending, err := queryBool(r, "ascending")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query := domain.ProductQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    domain.ProductSortField(strings.TrimSpace(r.URL.Query().Get("sortBy"))),
		Ascending: ascending,
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		query.Category, _ = domain.ParseProductCategory(raw)
	}

	result, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPageResponse(result))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) getProductByName(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProduct(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) updateProductByName(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProduct(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.catalog.UpdateProductByName(r.Context(), chi.URLParam(r, "name"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProductByName(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProductByName(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setProductImage(w http.ResponseWriter, r *http.Request) {
	imageID := strings.TrimSpace(r.URL.Query().Get("imageId"))
	if imageID == "" {
		h.writeError(w, r, invalidParam("imageId", errImageIDRequired))
		return
	}
	if err := h.catalog.SetProductImage(r.Context(), chi.URLParam(r, "id"), imageID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProductImage(w http.ResponseWriter, r *http.Request) {
	image, ok, err := h.catalog.ProductImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeError(w, r, errNoImage)
		return
	}
	writeJSON(w, http.StatusOK, toImageResponse(image))
}

func (h *Handler) removeProductImage(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.RemoveProductImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeImage(r *http.Request) (imageRequest, error) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return imageRequest{}, invalidParam("body", err)
	}
	return req, nil
}

func (h *Handler) createImage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeImage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	image, err := h.catalog.CreateImage(r.Context(), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toImageResponse(image))
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.catalog.GetImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toImageResponse(image))
}

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeImage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	image, err := h.catalog.UpdateImage(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toImageResponse(image))
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
