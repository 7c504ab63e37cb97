package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/kafka"
)

func sampleAlert() inventory.LowStockAlert {
	return inventory.LowStockAlert{
		FarmID:         "farm-1",
		ItemID:         "item-1",
		ItemName:       "Dairy Meal",
		QuantityOnHand: decimal.NewFromInt(50),
		ReorderLevel:   decimal.NewFromInt(100),
		Unit:           "kg",
		Severity:       inventory.SeverityMedium,
		MovementID:     "mov-1",
		OccurredAt:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestPublishLowStock_EnviaJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got inventory.LowStockAlert
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.ItemName != "Dairy Meal" || !got.QuantityOnHand.Equal(decimal.NewFromInt(50)) {
			return errors.New("payload inesperado")
		}
		return nil
	})

	pub := kafka.NewPublisherWithProducer(producer, "farm.alerts.low_stock", nil)
	require.NoError(t, pub.PublishLowStock(context.Background(), sampleAlert()))
	require.NoError(t, pub.Close())
}

func TestPublishLowStock_ErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := kafka.NewPublisherWithProducer(producer, "farm.alerts.low_stock", nil)
	err := pub.PublishLowStock(context.Background(), sampleAlert())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestPublishLowStock_ContextoCancelado(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	pub := kafka.NewPublisherWithProducer(producer, "farm.alerts.low_stock", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.PublishLowStock(ctx, sampleAlert()), context.Canceled)
	require.NoError(t, pub.Close())
}
