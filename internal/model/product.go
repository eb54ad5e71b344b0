package model

import "time"

// Category is a row in the `categories` table. Products reference a
// category through a nullable foreign key; a missing reference is a
// valid state rendered as "Uncategorized".
//
// Fields:
//
//	ID        – textual identifier (e.g. "CAT3f9a1c").
//	Name      – display name, unique.
//	CreatedAt – timestamp of creation.
type Category struct {
	ID        string    `db:"id"`         // categories.id
	Name      string    `db:"name"`       // categories.name
	CreatedAt time.Time `db:"created_at"` // categories.created_at
}

// Product is a sellable item in the `products` table. Price is the
// selling price per unit, Cost the purchase cost used for profit
// reporting. Stock is decremented by sale recording and must never
// go negative.
//
// Fields:
//
//	ID         – textual identifier (e.g. "P001" or generated).
//	Name       – display name.
//	Price      – unit selling price.
//	Cost       – unit purchase cost.
//	Stock      – current stock count.
//	Barcode    – optional scan code (nullable, unique when set).
//	CategoryID – optional reference into categories (nullable).
//	ImageURL   – optional image reference (nullable).
//	CreatedAt  – timestamp of creation.
//	UpdatedAt  – timestamp of last update.
type Product struct {
	ID         string    `db:"id"`          // products.id
	Name       string    `db:"name"`        // products.name
	Price      float64   `db:"price"`       // products.price
	Cost       float64   `db:"cost"`        // products.cost
	Stock      int64     `db:"stock"`       // products.stock
	Barcode    *string   `db:"barcode"`     // products.barcode (nullable)
	CategoryID *string   `db:"category_id"` // products.category_id (nullable)
	ImageURL   *string   `db:"image_url"`   // products.image_url (nullable)
	CreatedAt  time.Time `db:"created_at"`  // products.created_at
	UpdatedAt  time.Time `db:"updated_at"`  // products.updated_at
}
