// Package repository defines the storage capability behind the API. The
// sentinel errors here are shared by both implementations (SQL and
// in-memory) so handlers can map failures to HTTP statuses without
// knowing which backend is running.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated,
// such as a duplicate username, product id or barcode. Handlers
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInsufficientStock is returned by sale recording when a line item
// asks for more units than the product has on hand. The sale is not
// written at all in that case. Handlers translate this into 400.
var ErrInsufficientStock = errors.New("insufficient stock")
