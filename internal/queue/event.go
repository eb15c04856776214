// Package queue defines message payloads exchanged over the message broker.
package queue

// BillCreatedEvent is published whenever a payment produces a bill,
// whether from a full checkout or a partial payment. It carries enough
// information for downstream consumers to print receipts, notify, or
// feed analytics without querying the primary database.
type BillCreatedEvent struct {
	BillID        uint64 `json:"bill_id"`
	OrderID       uint64 `json:"order_id"`
	TableID       uint64 `json:"table_id"`
	TableName     string `json:"table_name"`
	TotalAmount   int64  `json:"total_amount"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}
