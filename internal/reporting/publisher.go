package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"claimflow/internal/platform/config"
)

// Publisher sends claim reports to the analytics sink.
type Publisher interface {
	Publish(ctx context.Context, report ClaimReport) error
}

// KafkaPublisher writes reports to a Kafka topic keyed by claim id so every
// report for a claim lands on the same partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects to the brokers and makes sure the analytics
// topic exists.
func NewKafkaPublisher(ctx context.Context, cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AnalyticsTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), cfg); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: cfg.AnalyticsTopic}, nil
}

func ensureTopic(ctx context.Context, admin *kadm.Client, cfg config.KafkaConfig) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	replication := cfg.Replication
	if replication <= 0 {
		replication = 1
	}
	resps, err := admin.CreateTopics(ctx, partitions, replication, nil, cfg.AnalyticsTopic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.AnalyticsTopic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, report ClaimReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal claim report: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(report.ClaimID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "claim_action", Value: []byte(report.ClaimAction)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish claim report: %w", err)
	}
	return nil
}

// Health pings the brokers.
func (p *KafkaPublisher) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// LogPublisher writes reports to the log. It is used when no brokers are
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, report ClaimReport) error {
	p.logger.InfoContext(ctx, "claim report",
		slog.String("claim_id", report.ClaimID.String()),
		slog.String("claim_action", string(report.ClaimAction)),
		slog.String("claim_status", string(report.ClaimStatus)),
		slog.String("region", report.PostcodeData.Region),
	)
	return nil
}

type InMemoryPublisher struct {
	mu      sync.Mutex
	reports []ClaimReport
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, report ClaimReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return nil
}

func (p *InMemoryPublisher) Reports() []ClaimReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ClaimReport(nil), p.reports...)
}
