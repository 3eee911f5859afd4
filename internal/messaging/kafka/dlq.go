package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDeadLetter — запись DLQ не похожа ни на один известный формат.
var ErrUnknownDeadLetter = errors.New("unknown dead letter format")

// DeadLetterSource — откуда запись попала в DLQ.
type DeadLetterSource string

const (
	DeadLetterFromConsumer DeadLetterSource = "consumer"
	DeadLetterFromOutbox   DeadLetterSource = "outbox"
)

// Replay — сообщение, восстановленное из DLQ для повторной публикации.
type Replay struct {
	Source    DeadLetterSource
	Topic     string
	Key       string
	EventType string
	Value     []byte
}

// consumerDeadLetter — формат, который пишет Consumer.sendToDLQ.
type consumerDeadLetter struct {
	OriginalTopic string `json:"original_topic"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	ErrorMessage  string `json:"error_message"`
}

// outboxDeadLetter — payload внутри Envelope, который пишет outbox worker.
type outboxDeadLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
}

// DecodeDeadLetter восстанавливает исходное сообщение из записи DLQ.
// Для outbox-записей собирается свежий Envelope, который уходит в defaultTopic.
func DecodeDeadLetter(value []byte, defaultTopic string, now time.Time) (Replay, error) {
	var fromConsumer consumerDeadLetter
	if err := json.Unmarshal(value, &fromConsumer); err == nil && fromConsumer.OriginalValue != "" {
		topic := strings.TrimSpace(fromConsumer.OriginalTopic)
		if topic == "" {
			topic = defaultTopic
		}
		replay := Replay{
			Source: DeadLetterFromConsumer,
			Topic:  topic,
			Key:    fromConsumer.OriginalKey,
			Value:  []byte(fromConsumer.OriginalValue),
		}
		if envelope, err := ParseEnvelope(replay.Value); err == nil {
			replay.EventType = envelope.EventType
		}
		return replay, nil
	}

	envelope, err := ParseEnvelope(value)
	if err != nil || len(envelope.Payload) == 0 {
		return Replay{}, ErrUnknownDeadLetter
	}

	var fromOutbox outboxDeadLetter
	if err := json.Unmarshal(envelope.Payload, &fromOutbox); err != nil {
		return Replay{}, fmt.Errorf("decode outbox dead letter: %w", err)
	}
	if len(fromOutbox.Payload) == 0 {
		return Replay{}, fmt.Errorf("outbox dead letter %s has no original payload", envelope.ID)
	}

	restored := Envelope{
		ID:            firstNonEmpty(fromOutbox.OutboxID, envelope.ID),
		AggregateType: firstNonEmpty(fromOutbox.AggregateType, envelope.AggregateType),
		AggregateID:   firstNonEmpty(fromOutbox.AggregateID, envelope.AggregateID),
		EventType:     firstNonEmpty(fromOutbox.EventType, envelope.EventType),
		Payload:       fromOutbox.Payload,
		PublishedAt:   now.UTC(),
	}
	encoded, err := json.Marshal(restored)
	if err != nil {
		return Replay{}, fmt.Errorf("encode restored envelope: %w", err)
	}

	key := restored.AggregateID
	if key == "" {
		key = restored.ID
	}
	return Replay{
		Source:    DeadLetterFromOutbox,
		Topic:     defaultTopic,
		Key:       key,
		EventType: restored.EventType,
		Value:     encoded,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
