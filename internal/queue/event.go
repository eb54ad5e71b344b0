// Package queue defines message payloads exchanged over the message broker
// and the background consumer that renders them.
package queue

// ReceiptLine is one printed line of a receipt.
type ReceiptLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
}

// ReceiptQueuedEvent is published when a cashier requests a receipt for a
// recorded sale. It carries a full denormalized copy of the transaction so
// downstream consumers (printer bridge, receipt log) never query the
// primary database.
type ReceiptQueuedEvent struct {
	TransactionID string        `json:"transaction_id"`
	Cashier       string        `json:"cashier"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentAmount float64       `json:"payment_amount"`
	ChangeAmount  float64       `json:"change_amount"`
	Discount      float64       `json:"discount"`
	PaymentMethod string        `json:"payment_method"`
	Items         []ReceiptLine `json:"items"`
	SoldAt        string        `json:"sold_at"`
	QueuedAt      string        `json:"queued_at"`
}
