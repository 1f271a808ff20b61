package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/config"
	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// messageReader is the part of *kafka.Reader the source uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSource replays recordings from a topic. Messages are keyed by website
// id and carry one recording JSON object each. The topic partition is read
// from the first offset until no message arrives for IdleTimeout.
type KafkaSource struct {
	cfg       config.KafkaConfig
	newReader func() (messageReader, error)
	logger    *zap.Logger
}

// NewKafkaSource validates cfg and prepares a source that opens a fresh
// reader for every Fetch.
func NewKafkaSource(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
		)
		return nil, ErrInvalidKafkaConfig
	}

	s := &KafkaSource{cfg: cfg, logger: logger}
	s.newReader = func() (messageReader, error) {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			Partition:   cfg.Partition,
			Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
			ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
		})
		if err := r.SetOffset(kafka.FirstOffset); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	}

	logger.Info("Kafka source created",
		zap.String("topic", cfg.Topic),
		zap.Int("partition", cfg.Partition),
		zap.Strings("brokers", cfg.Brokers),
		zap.Duration("idle_timeout", cfg.IdleTimeout),
	)
	return s, nil
}

func (s *KafkaSource) Name() string {
	return "kafka"
}

// Fetch reads the partition and keeps the recordings of websiteID created
// within [from, to]. Undecodable messages are skipped.
func (s *KafkaSource) Fetch(ctx context.Context, websiteID string, from, to time.Time) ([]recording.Recording, error) {
	sugar := s.logger.Sugar().With("website_id", websiteID)

	reader, err := s.newReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	idle := s.cfg.IdleTimeout
	if idle <= 0 {
		idle = 5 * time.Second
	}

	var (
		recs    []recording.Recording
		read    int
		skipped int
	)
	for {
		readCtx, cancel := context.WithTimeout(ctx, idle)
		m, err := reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				sugar.Debugw("No message within idle timeout, replay complete", "idle_timeout", idle)
				break
			}
			sugar.Errorw("Error reading message from Kafka", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}
		read++

		if string(m.Key) != websiteID {
			continue
		}
		rec, err := recording.Parse(m.Value)
		if err != nil {
			skipped++
			sugar.Warnw("Failed to parse message, skipping", "offset", m.Offset, zap.Error(err))
			continue
		}
		if created, err := date.Parse(rec.Created); err == nil && !date.Within(created, from, to) {
			continue
		}
		// Unparseable timestamps are kept so the report counts them as dropped.
		recs = append(recs, rec)
	}

	sugar.Infow("Kafka replay finished",
		"messages", read,
		"recordings", len(recs),
		"skipped", skipped,
	)
	return recs, nil
}
