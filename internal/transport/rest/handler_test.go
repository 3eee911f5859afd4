package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type fixture struct {
	t      *testing.T
	store  *memory.Store
	server *httptest.Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	handler := NewHandler(
		catalog.New(store),
		cart.New(store),
		workflow.New(store),
		append([]Option{WithIdempotency(idempotency.NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil))}, opts...)...,
	)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return &fixture{t: t, store: store, server: server}
}

func (f *fixture) do(method, path string, body any, headers ...string) (*http.Response, []byte) {
	f.t.Helper()
	reader := strings.NewReader("")
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp, raw
}

func (f *fixture) createProduct(name string, quantity int64) productResponse {
	f.t.Helper()
	resp, body := f.do(http.MethodPost, "/products", productRequest{
		Name:       name,
		PriceMinor: 250,
		Quantity:   quantity,
		Category:   "food",
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode, string(body))
	var out productResponse
	require.NoError(f.t, json.Unmarshal(body, &out))
	return out
}

func (f *fixture) createCart() string {
	f.t.Helper()
	resp, body := f.do(http.MethodPost, "/carts", nil)
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	var out cartResponse
	require.NoError(f.t, json.Unmarshal(body, &out))
	return out.ID
}

func (f *fixture) addLine(cartID, productID string, quantity int) {
	f.t.Helper()
	resp, body := f.do(http.MethodPost, "/carts/"+cartID+"/add?productId="+productID+"&quantity="+strconv.Itoa(quantity), nil)
	require.Equal(f.t, http.StatusOK, resp.StatusCode, string(body))
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var out errorBody
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	bread := f.createProduct("bread", 5)
	assert.Equal(t, "FOOD", bread.Category)

	cartID := f.createCart()
	f.addLine(cartID, bread.ID, 2)

	resp, body := f.do(http.MethodPost, "/orders?cartId="+cartID, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order orderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "AWAITING_PAYMENT", order.Status)
	assert.Equal(t, int64(500), order.AmountMinor)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "bread", order.Items[0].ProductName)

	resp, body = f.do(http.MethodGet, "/carts/"+cartID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var emptied cartResponse
	require.NoError(t, json.Unmarshal(body, &emptied))
	assert.Empty(t, emptied.Lines)

	resp, _ = f.do(http.MethodPost, "/orders/"+order.ID+"/finish", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.do(http.MethodPost, "/orders/"+order.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "DELIVERED", order.Status)

	resp, _ = f.do(http.MethodPost, "/orders/"+order.ID+"/pay", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(http.MethodPost, "/orders/"+order.ID+"/finish", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody := decodeError(t, body)
	assert.Equal(t, http.StatusNotFound, errBody.Status)
	assert.Equal(t, "/orders/"+order.ID, errBody.Path)

	resp, body = f.do(http.MethodGet, "/orders/"+order.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []timelineEventResponse
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 3)
	assert.Equal(t, domain.TimelineOrderFinished, events[2].Type)

	stock, err := f.store.Products().Stock(context.Background(), bread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stock)
}

func TestPlaceOrderInsufficientStockLeavesCart(t *testing.T) {
	f := newFixture(t)
	milk := f.createProduct("milk", 1)
	cartID := f.createCart()
	f.addLine(cartID, milk.ID, 3)

	resp, body := f.do(http.MethodGet, "/carts/"+cartID+"/availability", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var availability availabilityResponse
	require.NoError(t, json.Unmarshal(body, &availability))
	assert.False(t, availability.Available)
	require.Len(t, availability.Shortages, 1)
	assert.Equal(t, int64(1), availability.Shortages[0].Available)

	resp, body = f.do(http.MethodPost, "/orders?cartId="+cartID, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decodeError(t, body)
	assert.Equal(t, "Conflict", errBody.Error)
	assert.Contains(t, errBody.Message, milk.ID)

	resp, body = f.do(http.MethodGet, "/carts/"+cartID+"/"+milk.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line cartLineResponse
	require.NoError(t, json.Unmarshal(body, &line))
	assert.Equal(t, int64(3), line.Quantity)
	require.NotNil(t, line.Product)
	assert.Equal(t, "milk", line.Product.Name)
}

func TestPlaceOrderIdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	tea := f.createProduct("tea", 10)
	cartID := f.createCart()
	f.addLine(cartID, tea.ID, 4)

	resp, first := f.do(http.MethodPost, "/orders?cartId="+cartID, nil, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(ReplayedHeader))

	resp, second := f.do(http.MethodPost, "/orders?cartId="+cartID, nil, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(ReplayedHeader))
	assert.JSONEq(t, string(first), string(second))

	stock, err := f.store.Products().Stock(context.Background(), tea.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock)

	resp, _ = f.do(http.MethodPost, "/orders?cartId=other", nil, IdempotencyKeyHeader, "key-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPlaceOrderRateLimited(t *testing.T) {
	f := newFixture(t, WithPlaceRateLimit(rate.NewLimiter(rate.Every(time.Hour), 1)))

	resp, _ := f.do(http.MethodPost, "/orders?cartId=missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := f.do(http.MethodPost, "/orders?cartId=missing", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, decodeError(t, body).Status)

	resp, _ = f.do(http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationErrorsCarryFieldErrors(t *testing.T) {
	f := newFixture(t)
	cartID := f.createCart()

	resp, body := f.do(http.MethodPost, "/carts/"+cartID+"/add?productId=p&quantity=many", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decodeError(t, body)
	require.Len(t, errBody.FieldErrors, 1)
	assert.Equal(t, "quantity", errBody.FieldErrors[0].Field)

	resp, body = f.do(http.MethodPost, "/products", productRequest{Name: "", PriceMinor: -5, Category: "toys"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := map[string]bool{}
	for _, fe := range decodeError(t, body).FieldErrors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["category"])

	f.createProduct("unique", 1)
	resp, _ = f.do(http.MethodPost, "/products", productRequest{Name: "unique", Category: "OTHER"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListProductsPaginatesAndSorts(t *testing.T) {
	f := newFixture(t)
	for i, name := range []string{"apple", "cherry", "banana"} {
		f.createProduct(name, int64(i+1))
	}

	resp, body := f.do(http.MethodGet, "/products?page=0&pageSize=2&sortBy=name&ascending=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page productPageResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "apple", page.Content[0].Name)
	assert.Equal(t, "banana", page.Content[1].Name)

	resp, _ = f.do(http.MethodGet, "/products?ascending=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/products/by-name/cherry", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cherry productResponse
	require.NoError(t, json.Unmarshal(body, &cherry))
	assert.Equal(t, int64(2), cherry.Quantity)
}

func TestProductImageRoutes(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct("camera", 1)

	resp, _ := f.do(http.MethodGet, "/products/"+product.ID+"/image", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := f.do(http.MethodPost, "/images", imageRequest{Content: "aW1hZ2U="})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var image imageResponse
	require.NoError(t, json.Unmarshal(body, &image))

	resp, _ = f.do(http.MethodPut, "/products/"+product.ID+"/image", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(http.MethodPut, "/products/"+product.ID+"/image?imageId="+image.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/products/"+product.ID+"/image", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got imageResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "aW1hZ2U=", got.Content)

	resp, _ = f.do(http.MethodDelete, "/products/"+product.ID+"/image", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(http.MethodGet, "/images/"+image.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartRoutes(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct("pen", 3)
	cartID := f.createCart()
	f.addLine(cartID, product.ID, 1)

	resp, body := f.do(http.MethodPut, "/carts/"+cartID+"/"+product.ID+"?quantity=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line cartLineResponse
	require.NoError(t, json.Unmarshal(body, &line))
	assert.Equal(t, int64(3), line.Quantity)

	resp, _ = f.do(http.MethodPut, "/carts/"+cartID+"/"+product.ID+"?quantity=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(http.MethodDelete, "/carts/"+cartID+"/"+product.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(http.MethodDelete, "/carts/"+cartID+"/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(http.MethodPost, "/carts/"+cartID+"/clear", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = f.do(http.MethodGet, "/carts/"+cartID+"/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = f.do(http.MethodDelete, "/carts/"+cartID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(http.MethodGet, "/carts/"+cartID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusForMapsDomainErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrCartNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(&domain.InsufficientStockError{ProductID: "p"}))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrBadOrderState))
	assert.Equal(t, http.StatusConflict, statusFor(idempotency.ErrRequestInProgress))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrQuantityInvalid))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
