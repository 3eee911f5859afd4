package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

const (
	defaultLimit       = 100
	defaultIdleTimeout = 2 * time.Second

	envKafkaBrokers = "SF_KAFKA_BROKERS"
	envKafkaTopic   = "SF_KAFKA_TOPIC"
)

type options struct {
	brokers     []string
	sourceTopic string
	targetTopic string
	eventType   string
	limit       int
	execute     bool
	fromNewest  bool
	idleTimeout time.Duration
}

func parseFlags(args []string, lookup func(string) string) (options, error) {
	var (
		opts    options
		brokers string
	)
	fs := flag.NewFlagSet("dlq-reprocess", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&brokers, "brokers", "", "comma-separated Kafka brokers (fallback: "+envKafkaBrokers+")")
	fs.StringVar(&opts.sourceTopic, "source-topic", kafka.TopicDeadLetterQueue, "DLQ topic to scan")
	fs.StringVar(&opts.targetTopic, "target-topic", "", "topic for outbox entries (fallback: "+envKafkaTopic+")")
	fs.StringVar(&opts.eventType, "event-type", "", "replay only this event type, e.g. order.placed")
	fs.IntVar(&opts.limit, "limit", defaultLimit, "max number of DLQ records to scan")
	fs.BoolVar(&opts.execute, "execute", false, "publish records; default is dry-run")
	fs.BoolVar(&opts.fromNewest, "from-newest", false, "scan the newest records of each partition")
	fs.DurationVar(&opts.idleTimeout, "idle-timeout", defaultIdleTimeout, "stop reading a partition after this idle period")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if strings.TrimSpace(brokers) == "" {
		brokers = lookup(envKafkaBrokers)
	}
	opts.brokers = splitList(brokers)
	if len(opts.brokers) == 0 {
		return options{}, errors.New("kafka brokers are required (-brokers or " + envKafkaBrokers + ")")
	}
	if strings.TrimSpace(opts.targetTopic) == "" {
		opts.targetTopic = strings.TrimSpace(lookup(envKafkaTopic))
	}
	if opts.targetTopic == "" {
		opts.targetTopic = kafka.TopicOrderEvents
	}
	if strings.TrimSpace(opts.sourceTopic) == "" {
		return options{}, errors.New("source-topic is required")
	}
	if opts.limit <= 0 {
		return options{}, errors.New("limit must be > 0")
	}
	if opts.idleTimeout <= 0 {
		return options{}, errors.New("idle-timeout must be > 0")
	}
	return opts, nil
}

func splitList(raw string) []string {
	var out []string
	for _, chunk := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(chunk); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type offsetClient interface {
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Partitions(topic string) ([]int32, error)
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
}

type rawPublisher interface {
	PublishRaw(topic, key string, value []byte, headers ...sarama.RecordHeader) error
}

type saramaSource struct {
	consumer sarama.Consumer
}

func (s saramaSource) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	return s.consumer.ConsumePartition(topic, partition, offset)
}

type stats struct {
	scanned  int
	replayed int
	filtered int
	skipped  int
}

func (s *stats) add(other stats) {
	s.scanned += other.scanned
	s.replayed += other.replayed
	s.filtered += other.filtered
	s.skipped += other.skipped
}

// reprocessor читает DLQ по партициям и восстанавливает исходные сообщения.
type reprocessor struct {
	opts      options
	client    offsetClient
	source    partitionSource
	publisher rawPublisher
	logger    *log.Entry
	now       func() time.Time
}

func (r *reprocessor) run(ctx context.Context) (stats, error) {
	var total stats
	if r.opts.execute && r.publisher == nil {
		return total, errors.New("publisher is required in execute mode")
	}

	partitions, err := r.client.Partitions(r.opts.sourceTopic)
	if err != nil {
		return total, fmt.Errorf("list partitions of %s: %w", r.opts.sourceTopic, err)
	}
	slices.Sort(partitions)

	for _, partition := range partitions {
		remaining := r.opts.limit - total.scanned
		if remaining <= 0 {
			break
		}
		partStats, err := r.processPartition(ctx, partition, remaining)
		total.add(partStats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *reprocessor) processPartition(ctx context.Context, partition int32, limit int) (stats, error) {
	var st stats
	oldest, err := r.client.GetOffset(r.opts.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return st, fmt.Errorf("oldest offset of partition %d: %w", partition, err)
	}
	newest, err := r.client.GetOffset(r.opts.sourceTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return st, fmt.Errorf("newest offset of partition %d: %w", partition, err)
	}
	if newest <= oldest {
		return st, nil
	}

	start := oldest
	if r.opts.fromNewest {
		start = max(newest-int64(limit), oldest)
	}

	pc, err := r.source.ConsumePartition(r.opts.sourceTopic, partition, start)
	if err != nil {
		return st, fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idle := time.NewTimer(r.opts.idleTimeout)
	defer idle.Stop()

	for st.scanned < limit {
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-idle.C:
			return st, nil
		case consumeErr := <-pc.Errors():
			if consumeErr != nil {
				return st, fmt.Errorf("partition %d: %w", partition, consumeErr)
			}
		case msg, ok := <-pc.Messages():
			if !ok || msg == nil || msg.Offset >= newest {
				return st, nil
			}
			idle.Reset(r.opts.idleTimeout)

			st.scanned++
			if err := r.handle(msg, &st); err != nil {
				return st, err
			}
			if msg.Offset+1 >= newest {
				return st, nil
			}
		}
	}
	return st, nil
}

func (r *reprocessor) handle(msg *sarama.ConsumerMessage, st *stats) error {
	entry := r.logger.WithFields(log.Fields{
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	replay, err := kafka.DecodeDeadLetter(msg.Value, r.opts.targetTopic, r.now())
	if err != nil {
		st.skipped++
		entry.WithError(err).Warn("skip undecodable dlq record")
		return nil
	}
	if r.opts.eventType != "" && replay.EventType != r.opts.eventType {
		st.filtered++
		return nil
	}

	entry = entry.WithFields(log.Fields{
		"source":       replay.Source,
		"target_topic": replay.Topic,
		"key":          replay.Key,
		"event_type":   replay.EventType,
	})
	if !r.opts.execute {
		st.replayed++
		entry.Info("dlq replay candidate")
		return nil
	}

	header := sarama.RecordHeader{Key: []byte(kafka.HeaderReplayedFrom), Value: []byte(r.opts.sourceTopic)}
	if err := r.publisher.PublishRaw(replay.Topic, replay.Key, replay.Value, header); err != nil {
		return fmt.Errorf("republish offset %d: %w", msg.Offset, err)
	}
	st.replayed++
	entry.Debug("dlq record replayed")
	return nil
}

func run(ctx context.Context, opts options) (stats, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = "storefront-dlq-reprocess"
	cfg.Consumer.Return.Errors = true

	client, err := sarama.NewClient(opts.brokers, cfg)
	if err != nil {
		return stats{}, fmt.Errorf("create kafka client: %w", err)
	}
	defer func() { _ = client.Close() }()

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		return stats{}, fmt.Errorf("create kafka consumer: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	r := &reprocessor{
		opts:   opts,
		client: client,
		source: saramaSource{consumer: consumer},
		logger: log.WithField("component", "dlq-reprocess"),
		now:    time.Now,
	}
	if opts.execute {
		producer, err := kafka.NewProducer(opts.brokers, cfg.ClientID)
		if err != nil {
			return stats{}, err
		}
		defer func() { _ = producer.Close() }()
		r.publisher = producer
	}
	return r.run(ctx)
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		log.WithError(err).Fatal("invalid arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"source_topic": opts.sourceTopic,
		"target_topic": opts.targetTopic,
		"event_type":   opts.eventType,
		"limit":        opts.limit,
		"execute":      opts.execute,
	}).Info("starting dlq reprocess")

	result, err := run(ctx, opts)
	fields := log.Fields{
		"scanned":  result.scanned,
		"replayed": result.replayed,
		"filtered": result.filtered,
		"skipped":  result.skipped,
	}
	if err != nil {
		log.WithError(err).WithFields(fields).Fatal("dlq reprocess failed")
	}
	log.WithFields(fields).Info("dlq reprocess finished")
}
