// Package kafka publica los eventos del libro en Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/pkg/logger"
)

// EventTypeLowStock valor del header event_type de las alertas.
const EventTypeLowStock = "inventory.low_stock"

var _ inventory.AlertPublisher = (*Publisher)(nil)

// Publisher envía alertas de stock bajo con un productor síncrono.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewPublisher crea el productor contra los brokers dados.
func NewPublisher(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	p := NewPublisherWithProducer(producer, topic, log)
	p.log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("publicador kafka inicializado")
	return p, nil
}

// NewPublisherWithProducer envuelve un productor existente (mocks en tests).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{producer: producer, topic: topic, log: log.Component("kafka")}
}

// PublishLowStock publica la alerta con clave farm_id:item_id para que las alertas de un
// mismo insumo caigan en la misma partición.
func (p *Publisher) PublishLowStock(ctx context.Context, alert inventory.LowStockAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(alert.FarmID + ":" + alert.ItemID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeLowStock)},
			{Key: []byte("severity"), Value: []byte(alert.Severity)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("enviar alerta a kafka: %w", err)
	}
	p.log.ForItem(alert.FarmID, alert.ItemID).Info().
		Str("topic", p.topic).Int32("partition", partition).Int64("offset", offset).Str("severity", alert.Severity).
		Msg("alerta de stock bajo publicada")
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
