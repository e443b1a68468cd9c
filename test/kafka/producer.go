// этот код не зависит от приложения,
// и нужен только для ручной проверки создания заказов через кафку
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/asquebay/order-tracking-api/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/segmentio/kafka-go"
)

func main() {
	brokerAddress := flag.String("broker", "localhost:9092", "kafka broker address")
	topic := flag.String("topic", "orders.create", "topic to write orders to")
	count := flag.Int("n", 1, "number of orders to send")
	flag.Parse()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*brokerAddress),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	messages := make([]kafka.Message, 0, *count)
	for i := 0; i < *count; i++ {
		payload, err := json.Marshal(fakeOrder())
		if err != nil {
			log.Fatalf("failed to marshal order: %v", err)
		}
		messages = append(messages, kafka.Message{Value: payload})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("sending %d message(s) to %s...", len(messages), *topic)
	if err := writer.WriteMessages(ctx, messages...); err != nil {
		log.Fatalf("failed to write messages: %v", err)
	}
	fmt.Println("messages sent successfully!")
}

func fakeOrder() model.OrderCreate {
	items := make([]model.Item, gofakeit.Number(1, 4))
	for i := range items {
		items[i] = model.Item{
			Item:     gofakeit.ProductName(),
			Quantity: gofakeit.Number(1, 10),
		}
	}

	status := model.Statuses[gofakeit.Number(0, len(model.Statuses)-1)]
	return model.OrderCreate{
		Address:       gofakeit.Street() + ", " + gofakeit.City(),
		RecipientName: gofakeit.Name(),
		Status:        status,
		Items:         items,
	}
}
