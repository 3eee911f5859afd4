package app

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer для outbox и DLQ.
// Ошибка логируется: сервис продолжает работу без Kafka.
func initKafkaProducer(brokers []string, clientID string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, clientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// initCacheInvalidationConsumer подписывает экземпляр на события заказов, чтобы
// сбрасывать закэшированные остатки. Группа уникальна для экземпляра: каждый
// должен увидеть все события.
func initCacheInvalidationConsumer(cfg Config, cache domain.ProductCache, dlq *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	if len(cfg.KafkaBrokers) == 0 || cache == nil {
		return nil, nil
	}

	groupID := cfg.KafkaConsumerGroup + "-" + uuid.NewString()
	invalidator := kafka.NewCacheInvalidator(cache, logger.WithField("component", "cache-invalidator"))

	opts := []kafka.ConsumerOption{kafka.WithConsumerLogger(logger.WithField("component", "kafka-consumer"))}
	if dlq != nil {
		opts = append(opts, kafka.WithDLQ(dlq))
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, groupID, []string{cfg.KafkaTopic}, invalidator.Handle, opts...)
	if err != nil {
		logger.WithError(err).Warn("failed to create cache invalidation consumer")
		return nil, err
	}
	logger.WithField("group_id", groupID).Info("cache invalidation consumer initialized")
	return consumer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
