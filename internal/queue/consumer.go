package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartReceiptConsumer connects to the broker, declares the durable
// receipt.queued queue and consumes it, appending each rendered receipt
// to logs/receipts.log. It runs a reconnect loop with capped backoff and
// keeps the server operating through broker outages; malformed messages
// are rejected without requeue so they cannot wedge the queue.
func StartReceiptConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("receipt-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeReceipts(conn); err != nil {
			log.Printf("receipt-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeReceipts(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(receiptQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(receiptQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := writeReceipt(d.Body); err != nil {
			log.Printf("receipt-consumer: handle message failed: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// writeReceipt renders one event as a single log line under logs/.
func writeReceipt(body []byte) error {
	var ev ReceiptQueuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "receipts.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	lines := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		lines = append(lines, fmt.Sprintf("%dx %s @%.2f", it.Quantity, it.ProductName, it.Price))
	}
	_, err = fmt.Fprintf(f, "%s %s cashier=%s total=%.2f paid=%.2f change=%.2f method=%s items=[%s]\n",
		time.Now().UTC().Format(time.RFC3339), ev.TransactionID, ev.Cashier,
		ev.TotalAmount, ev.PaymentAmount, ev.ChangeAmount, ev.PaymentMethod,
		strings.Join(lines, "; "))
	return err
}
