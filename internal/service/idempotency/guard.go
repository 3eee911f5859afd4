// Package idempotency обеспечивает однократное выполнение запросов с
// Idempotency-Key и очистку просроченных ключей.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultTTL — срок хранения результата по ключу.
const DefaultTTL = 24 * time.Hour

// storeTimeout ограничивает запись результата, которая идёт уже без отмены запроса.
const storeTimeout = 5 * time.Second

// ErrRequestInProgress возвращается, пока первый запрос с тем же ключом не завершён.
var ErrRequestInProgress = errors.New("request with the same idempotency key is already processing")

// Виды сохранённых ошибок.
const (
	kindNotFound          = "not_found"
	kindInsufficientStock = "insufficient_stock"
	kindBadOrderState     = "bad_order_state"
	kindInvalid           = "invalid"
	kindInternal          = "internal"
)

type failurePayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ReplayedError — ошибка первого выполнения, возвращённая повторному запросу.
// Unwrap отдаёт доменную ошибку того же вида, поэтому errors.Is работает как для исходной.
type ReplayedError struct {
	Kind    string
	Message string
}

func (e *ReplayedError) Error() string {
	if e.Message == "" {
		return "previous request with the same idempotency key failed"
	}
	return e.Message
}

func (e *ReplayedError) Unwrap() error {
	switch e.Kind {
	case kindNotFound:
		return domain.ErrNotFound
	case kindInsufficientStock:
		return domain.ErrInsufficientStock
	case kindBadOrderState:
		return domain.ErrBadOrderState
	case kindInvalid:
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "request", Err: errors.New(e.Message)}}}
	default:
		return nil
	}
}

// Guard выполняет функцию не более одного раза на ключ и воспроизводит её результат.
type Guard struct {
	repo   domain.IdempotencyRepository
	ttl    time.Duration
	logger *log.Entry
}

// NewGuard создаёт Guard. Нулевой ttl заменяется на DefaultTTL.
func NewGuard(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "idempotency-guard")
	}
	return &Guard{repo: repo, ttl: ttl, logger: logger}
}

// RequestHash строит отпечаток запроса из имени операции и его содержимого.
func RequestHash(method string, payload []byte) string {
	data := make([]byte, 0, len(method)+1+len(payload))
	data = append(data, method...)
	data = append(data, ':')
	data = append(data, payload...)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Do выполняет run под ключом key. Повторный вызов с тем же ключом и отпечатком
// возвращает сохранённый ответ (replayed=true) или сохранённую ошибку.
// Пустой ключ отключает защиту.
func (g *Guard) Do(ctx context.Context, key, requestHash string, run func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if g == nil || g.repo == nil || key == "" {
		body, err := run(ctx)
		return body, false, err
	}

	record, err := g.repo.CreateProcessing(ctx, key, requestHash, g.ttl)
	if err != nil {
		body, replayErr := g.replay(err, record)
		return body, replayErr == nil, replayErr
	}

	body, runErr := run(ctx)

	// результат сохраняется, даже если клиент уже отключился: иначе ключ
	// останется в processing до конца TTL
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if runErr != nil {
		g.storeFailure(storeCtx, key, runErr)
		return nil, false, runErr
	}
	if err := g.repo.MarkDone(storeCtx, key, body, http.StatusOK); err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent success response")
	}
	return body, false, nil
}

func (g *Guard) replay(createErr error, record domain.IdempotencyRecord) ([]byte, error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return nil, createErr
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone:
			return record.ResponseBody, nil
		case domain.IdempotencyStatusProcessing:
			return nil, ErrRequestInProgress
		case domain.IdempotencyStatusFailed:
			return nil, decodeFailure(record)
		default:
			return nil, errors.New("unknown idempotency record status")
		}
	default:
		g.logger.WithError(createErr).Warn("failed to create idempotency record")
		return nil, createErr
	}
}

func (g *Guard) storeFailure(ctx context.Context, key string, runErr error) {
	kind, status := classify(runErr)
	payload, err := json.Marshal(failurePayload{Kind: kind, Message: runErr.Error()})
	if err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to encode idempotency failure payload")
		payload = nil
	}
	if err := g.repo.MarkFailed(ctx, key, payload, status); err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotency failure response")
	}
}

func decodeFailure(record domain.IdempotencyRecord) error {
	var payload failurePayload
	if len(record.ResponseBody) > 0 && json.Unmarshal(record.ResponseBody, &payload) == nil {
		return &ReplayedError{Kind: payload.Kind, Message: payload.Message}
	}
	return &ReplayedError{Kind: kindInternal}
}

func classify(err error) (string, int) {
	switch {
	case domain.IsNotFound(err):
		return kindNotFound, http.StatusNotFound
	case domain.IsInsufficientStock(err):
		return kindInsufficientStock, http.StatusConflict
	case domain.IsBadOrderState(err):
		return kindBadOrderState, http.StatusConflict
	case domain.IsValidation(err):
		return kindInvalid, http.StatusBadRequest
	default:
		return kindInternal, http.StatusInternalServerError
	}
}
