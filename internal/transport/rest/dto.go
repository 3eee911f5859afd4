package rest

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"priceMinor"`
	Quantity    int64  `json:"quantity"`
	Category    string `json:"category"`
}

func (r productRequest) input() catalog.ProductInput {
	category, _ := domain.ParseProductCategory(r.Category)
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		PriceMinor:  r.PriceMinor,
		Quantity:    r.Quantity,
		Category:    category,
	}
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceMinor  int64     `json:"priceMinor"`
	Quantity    int64     `json:"quantity"`
	Category    string    `json:"category"`
	ImageID     string    `json:"imageId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		Quantity:    p.Quantity,
		Category:    string(p.Category),
		ImageID:     p.ImageID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type productPageResponse struct {
	Content    []productResponse `json:"content"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
}

func toProductPageResponse(page domain.ProductPage) productPageResponse {
	out := productPageResponse{
		Content:    make([]productResponse, 0, len(page.Items)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages(),
	}
	for _, p := range page.Items {
		out.Content = append(out.Content, toProductResponse(p))
	}
	return out
}

type imageRequest struct {
	Content string `json:"content"`
}

type imageResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func toImageResponse(i domain.Image) imageResponse {
	return imageResponse{ID: i.ID, Content: i.Content}
}

type cartLineResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int64            `json:"quantity"`
	AddedAt   time.Time        `json:"addedAt"`
	Product   *productResponse `json:"product,omitempty"`
}

func toCartLineResponse(line domain.CartLine) cartLineResponse {
	return cartLineResponse{ID: line.ID, ProductID: line.ProductID, Quantity: line.Quantity, AddedAt: line.AddedAt}
}

func toCartLineViewResponse(view cart.LineView) cartLineResponse {
	out := toCartLineResponse(view.CartLine)
	product := toProductResponse(view.Product)
	out.Product = &product
	return out
}

type cartResponse struct {
	ID        string             `json:"id"`
	Lines     []cartLineResponse `json:"lines"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func toCartResponse(view cart.View) cartResponse {
	out := cartResponse{
		ID:        view.ID,
		Lines:     make([]cartLineResponse, 0, len(view.Lines)),
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
	for _, line := range view.Lines {
		out.Lines = append(out.Lines, toCartLineViewResponse(line))
	}
	return out
}

type orderItemResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Category       string `json:"category"`
	UnitPriceMinor int64  `json:"unitPriceMinor"`
	Quantity       int64  `json:"quantity"`
	SubtotalMinor  int64  `json:"subtotalMinor"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CartID      string              `json:"cartId"`
	Status      string              `json:"status"`
	AmountMinor int64               `json:"amountMinor"`
	Version     int64               `json:"version"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	out := orderResponse{
		ID:          o.ID,
		CartID:      o.CartID,
		Status:      string(o.Status),
		AmountMinor: o.AmountMinor,
		Version:     o.Version,
		Items:       make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, orderItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Category:       string(item.Category),
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
			SubtotalMinor:  item.SubtotalMinor(),
		})
	}
	return out
}

type shortageResponse struct {
	ProductID string `json:"productId"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

type availabilityResponse struct {
	CartID    string             `json:"cartId"`
	Available bool               `json:"available"`
	Shortages []shortageResponse `json:"shortages"`
}

func toAvailabilityResponse(a workflow.Availability) availabilityResponse {
	out := availabilityResponse{
		CartID:    a.CartID,
		Available: a.Available,
		Shortages: make([]shortageResponse, 0, len(a.Shortages)),
	}
	for _, s := range a.Shortages {
		out.Shortages = append(out.Shortages, shortageResponse{ProductID: s.ProductID, Requested: s.Requested, Available: s.Available})
	}
	return out
}

type timelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toTimelineResponse(events []domain.TimelineEvent) []timelineEventResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, timelineEventResponse{Type: e.Type, Reason: e.Reason, Occurred: e.Occurred})
	}
	return out
}
