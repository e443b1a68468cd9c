package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/segmentio/kafka-go"
)

// OrderCreator абстрагирует консьюмер от конкретной реализации сервисного слоя
type OrderCreator interface {
	CreateOrder(ctx context.Context, in model.OrderCreate) (model.Order, error)
}

// messageReader — часть *kafka.Reader, которой пользуется консьюмер
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	retryMinDelay = 500 * time.Millisecond
	retryMaxDelay = 30 * time.Second
)

// Consumer создаёт заказы из JSON-сообщений топика
type Consumer struct {
	reader  messageReader
	service OrderCreator
	log     *slog.Logger

	minDelay time.Duration
	maxDelay time.Duration
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, service OrderCreator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return newConsumer(reader, service, log)
}

func newConsumer(reader messageReader, service OrderCreator, log *slog.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		service:  service,
		log:      log.With(slog.String("component", "kafka_consumer")),
		minDelay: retryMinDelay,
		maxDelay: retryMaxDelay,
	}
}

// Run читает сообщения, пока не отменён контекст или не закрыт ридер
// функция блокирующая, запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info("kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.log.Info("context cancelled, stopping consumer")
				return
			}
			if errors.Is(err, io.EOF) {
				c.log.Info("kafka reader closed")
				return
			}
			c.log.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		c.log.Debug("received message",
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		// следующее сообщение не читаем, пока не обработано текущее:
		// коммит более позднего offset потерял бы его
		if !c.handleWithRetry(ctx, msg) {
			c.log.Info("context cancelled, stopping consumer")
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("failed to commit message", slog.String("error", err.Error()))
		}
	}
}

// handleWithRetry повторяет обработку сообщения с нарастающей паузой
// возвращает false, если контекст отменили раньше, чем сообщение удалось обработать
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	delay := c.minDelay
	for attempt := 1; ; attempt++ {
		err := c.handleMessage(ctx, msg)
		if err == nil {
			return true
		}

		c.log.Error("failed to handle message, will retry",
			slog.String("error", err.Error()),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		delay = min(delay*2, c.maxDelay)
	}
}

// handleMessage возвращает ошибку только тогда, когда сообщение имеет смысл перечитать
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	const op = "kafka.Consumer.handleMessage"

	var in model.OrderCreate
	if err := json.Unmarshal(msg.Value, &in); err != nil {
		c.log.Warn("failed to unmarshal message, skipping", slog.String("error", err.Error()))
		return nil
	}

	if err := in.Validate(); err != nil {
		c.log.Warn("message validation failed, skipping", slog.String("error", err.Error()))
		return nil
	}

	order, err := c.service.CreateOrder(ctx, in)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.log.Warn("order rejected, skipping", slog.String("error", err.Error()))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("order created from message", slog.Int64("id", order.ID))
	return nil
}

// Close останавливает ридер
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
