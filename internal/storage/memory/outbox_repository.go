package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	seq        int64
	status     string
	attemptCnt int
	updatedAt  time.Time
}

// outboxRepository — in-memory transactional outbox: Enqueue внутри WithinTx
// откатывается вместе с остальными изменениями транзакции.
type outboxRepository struct {
	ex executor
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его с присвоенным ID.
func (r *outboxRepository) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	err := r.ex.exec(ctx, func(d *dataset, j *journal) error {
		d.outboxSeq++
		d.outbox[msg.ID] = &outboxRecord{
			msg:       msg,
			seq:       d.outboxSeq,
			status:    outboxStatusPending,
			updatedAt: msg.CreatedAt,
		}
		j.record(func() { delete(d.outbox, msg.ID) })
		return nil
	})
	return msg, err
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке записи.
func (r *outboxRepository) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var records []*outboxRecord
	err := r.ex.view(ctx, func(d *dataset) error {
		for _, rec := range d.outbox {
			if rec.status == outboxStatusPending {
				copied := *rec
				records = append(records, &copied)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	if len(records) > limit {
		records = records[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(records))
	for _, rec := range records {
		result = append(result, rec.msg)
	}
	return result, nil
}

func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	var stats domain.OutboxStats
	err := r.ex.view(ctx, func(d *dataset) error {
		for _, rec := range d.outbox {
			if rec.status != outboxStatusPending {
				continue
			}
			stats.PendingCount++
			if stats.OldestPendingAt.IsZero() || rec.msg.CreatedAt.Before(stats.OldestPendingAt) {
				stats.OldestPendingAt = rec.msg.CreatedAt
			}
		}
		return nil
	})
	return stats, err
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.mark(ctx, id, outboxStatusSent)
}

// MarkFailed фиксирует окончательную ошибку публикации.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.mark(ctx, id, outboxStatusFailed)
}

func (r *outboxRepository) mark(ctx context.Context, id, status string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		record, ok := d.outbox[id]
		if !ok {
			return domain.ErrOutboxPublish
		}
		prev := *record
		record.status = status
		record.attemptCnt++
		record.updatedAt = time.Now().UTC()
		j.record(func() { *record = prev })
		return nil
	})
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
