package model

import "time"

// Transaction is an immutable record of one completed sale in the
// `transactions` table. The identifier is time-derived ("TRX" +
// unix milliseconds). A transaction owns an ordered collection of
// TransactionItem rows; deleting the header cascades to the items.
//
// Fields:
//
//	ID            – time-derived identifier.
//	TotalAmount   – sale total after discount.
//	PaymentAmount – amount tendered by the customer.
//	ChangeAmount  – change due back.
//	Discount      – discount applied (percentage or amount, stored as given).
//	PaymentMethod – free-form tag such as "cash" or "qris".
//	CashierID     – user who recorded the sale (nullable).
//	CreatedAt     – timestamp of the sale.
type Transaction struct {
	ID            string    `db:"id"`             // transactions.id
	TotalAmount   float64   `db:"total_amount"`   // transactions.total_amount
	PaymentAmount float64   `db:"payment_amount"` // transactions.payment_amount
	ChangeAmount  float64   `db:"change_amount"`  // transactions.change_amount
	Discount      float64   `db:"discount"`       // transactions.discount
	PaymentMethod string    `db:"payment_method"` // transactions.payment_method
	CashierID     *uint64   `db:"cashier_id"`     // transactions.cashier_id (nullable)
	CreatedAt     time.Time `db:"created_at"`     // transactions.created_at
}

// TransactionItem is one line of a sale in the `transaction_items`
// table. Product name, price and cost are denormalized copies taken
// at sale time so historical receipts and profit reports stay stable
// when the product is later renamed, repriced or deleted.
//
// Fields:
//
//	ID              – primary key identifier.
//	TransactionID   – owning transaction.
//	ProductID       – product reference at time of sale.
//	ProductName     – product name at time of sale.
//	PriceAtSale     – unit selling price at time of sale.
//	CostPriceAtSale – unit cost at time of sale.
//	Quantity        – units sold, positive.
type TransactionItem struct {
	ID              uint64  `db:"id"`                 // transaction_items.id
	TransactionID   string  `db:"transaction_id"`     // transaction_items.transaction_id
	ProductID       string  `db:"product_id"`         // transaction_items.product_id
	ProductName     string  `db:"product_name"`       // transaction_items.product_name
	PriceAtSale     float64 `db:"price_at_sale"`      // transaction_items.price_at_sale
	CostPriceAtSale float64 `db:"cost_price_at_sale"` // transaction_items.cost_price_at_sale
	Quantity        int64   `db:"quantity"`           // transaction_items.quantity
}
