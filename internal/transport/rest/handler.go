// Package rest реализует HTTP API магазина поверх chi.
package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
)

const (
	// IdempotencyKeyHeader — заголовок ключа идемпотентности размещения заказа.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader выставляется, если ответ взят из сохранённого результата.
	ReplayedHeader = "Idempotent-Replayed"

	defaultRequestTimeout = 15 * time.Second
)

// Handler собирает HTTP-маршруты каталога, корзин и заказов.
type Handler struct {
	catalog *catalog.Service
	carts   *cart.Service
	orders  *workflow.Service
	guard   *idempotency.Guard
	limiter *rate.Limiter
	logger  *log.Entry
	timeout time.Duration
	now     func() time.Time
}

// Option настраивает Handler.
type Option func(*Handler)

// WithLogger задаёт logger для access-лога и ошибок.
func WithLogger(logger *log.Entry) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithIdempotency включает обработку Idempotency-Key при размещении заказа.
func WithIdempotency(guard *idempotency.Guard) Option {
	return func(h *Handler) {
		h.guard = guard
	}
}

// WithPlaceRateLimit ограничивает частоту размещения заказов token bucket'ом.
func WithPlaceRateLimit(limiter *rate.Limiter) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

// WithRequestTimeout задаёт таймаут обработки запроса.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// NewHandler создаёт HTTP-обработчик.
func NewHandler(catalogSvc *catalog.Service, cartSvc *cart.Service, workflowSvc *workflow.Service, opts ...Option) *Handler {
	h := &Handler{
		catalog: catalogSvc,
		carts:   cartSvc,
		orders:  workflowSvc,
		logger:  log.WithField("component", "rest"),
		timeout: defaultRequestTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes возвращает маршрутизатор со всеми эндпоинтами.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, h.accessLog, middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout))

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/by-name/{name}", h.getProductByName)
		r.Put("/by-name/{name}", h.updateProductByName)
		r.Delete("/by-name/{name}", h.deleteProductByName)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
		r.Put("/{id}/image", h.setProductImage)
		r.Get("/{id}/image", h.getProductImage)
		r.Delete("/{id}/image", h.removeProductImage)
	})

	r.Route("/images", func(r chi.Router) {
		r.Post("/", h.createImage)
		r.Get("/{id}", h.getImage)
		r.Put("/{id}", h.updateImage)
		r.Delete("/{id}", h.deleteImage)
	})

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.createCart)
		r.Get("/{cartID}", h.getCart)
		r.Delete("/{cartID}", h.deleteCart)
		r.Post("/{cartID}/add", h.addCartLine)
		r.Post("/{cartID}/clear", h.clearCart)
		r.Get("/{cartID}/availability", h.cartAvailability)
		r.Get("/{cartID}/orders", h.cartOrders)
		r.Get("/{cartID}/{productID}", h.getCartLine)
		r.Put("/{cartID}/{productID}", h.setCartLineQuantity)
		r.Delete("/{cartID}/{productID}", h.removeCartLine)
	})

	r.Route("/orders", func(r chi.Router) {
		r.With(h.rateLimit).Post("/", h.placeOrder)
		r.Get("/{id}", h.getOrder)
		r.Delete("/{id}", h.cancelOrder)
		r.Post("/{id}/pay", h.payOrder)
		r.Post("/{id}/finish", h.finishOrder)
		r.Get("/{id}/timeline", h.orderTimeline)
	})

	return r
}

// accessLog пишет строку лога на каждый запрос.
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		entry := h.logger.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Warn("http request")
			return
		}
		entry.Debug("http request")
	})
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			h.writeError(w, r, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, invalidParam(name, domain.ErrQuantityInvalid)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidParam(name, err)
	}
	return v, nil
}
