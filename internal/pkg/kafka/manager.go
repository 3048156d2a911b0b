package kafka

import (
	"context"
	log "log/slog"

	"github.com/IBM/sarama"

	"Paystone/internal/api/config"
	"Paystone/internal/service"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	snapshotConsumer sarama.ConsumerGroup
	snapshotHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	snapshotService service.SnapshotService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	snapshotConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaSnapshotConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	snapshotHandler := NewSnapshotHandler(snapshotService)

	return &ConsumerManager{
		snapshotConsumer: snapshotConsumer,
		snapshotHandler:  snapshotHandler,
	}, nil
}

// Start 启动所有消费者，阻塞直到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaSnapshotConsumer.Topic
		log.Info("Snapshot consumer started", "topic", topic)
		for {
			if err := m.snapshotConsumer.Consume(ctx, []string{topic}, m.snapshotHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.snapshotConsumer.Close(); err != nil {
		log.Error("Failed to close snapshot consumer", "err", err)
	}

	return nil
}
