package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/queue"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// ReceiptHandler queues receipts for recorded sales over the message
// broker. Receipt printing is decoupled from sale recording: recording a
// sale never touches the broker, and a broker outage only affects this
// endpoint.
type ReceiptHandler struct {
	Sales     repository.SaleStore
	BrokerURL string
}

func NewReceiptHandler(s repository.SaleStore, brokerURL string) *ReceiptHandler {
	return &ReceiptHandler{Sales: s, BrokerURL: brokerURL}
}

// Queue loads the sale and publishes a denormalized receipt event.
func (h *ReceiptHandler) Queue(c echo.Context) error {
	if h.BrokerURL == "" {
		return respondErr(c, http.StatusServiceUnavailable, "receipt queue not configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, items, err := h.Sales.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeErr(c, err)
	}

	event := queue.ReceiptQueuedEvent{
		TransactionID: tx.ID,
		TotalAmount:   tx.TotalAmount,
		PaymentAmount: tx.PaymentAmount,
		ChangeAmount:  tx.ChangeAmount,
		Discount:      tx.Discount,
		PaymentMethod: tx.PaymentMethod,
		SoldAt:        tx.CreatedAt.UTC().Format(time.RFC3339),
		QueuedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if id, ok := caller(c); ok {
		event.Cashier = id.Username
	}
	for _, it := range items {
		event.Items = append(event.Items, queue.ReceiptLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.PriceAtSale,
			Quantity:    it.Quantity,
		})
	}

	if err := queue.PublishReceiptQueued(ctx, h.BrokerURL, event); err != nil {
		return respondErr(c, http.StatusServiceUnavailable, "receipt queue unavailable")
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"status":         "queued",
		"transaction_id": tx.ID,
	})
}
