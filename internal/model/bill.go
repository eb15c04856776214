package model

// Accepted payment methods.
const (
	PaymentCash     = "Cash"
	PaymentTransfer = "Transfer"
	PaymentCard     = "Card"
)

// Bill records money actually collected and is the system of record
// for revenue reporting.  A bill is never mutated after creation; one
// order may produce several bills when it is settled through partial
// payments.  TotalAmount is the paid subtotal minus DiscountAmount and
// is deliberately not floored at zero, so an over-large discount shows
// up as a negative bill in reports instead of being hidden.
//
// Fields:
//  ID             – primary key identifier.
//  OrderID        – order the payment was taken against.
//  TableID        – table snapshot at payment time.
//  TableName      – table name snapshot at payment time.
//  TotalAmount    – amount collected, minor currency units.
//  PaymentMethod  – Cash, Transfer or Card.
//  CreatedAt      – payment timestamp (ISO-8601 string).
//  DiscountAmount – discount applied, recorded verbatim.
type Bill struct {
	ID             uint64 `json:"id"`             // bills.id
	OrderID        uint64 `json:"orderId"`        // bills.order_id
	TableID        uint64 `json:"tableId"`        // bills.table_id
	TableName      string `json:"tableName"`      // bills.table_name
	TotalAmount    int64  `json:"totalAmount"`    // bills.total_amount
	PaymentMethod  string `json:"paymentMethod"`  // bills.payment_method
	CreatedAt      string `json:"createdAt"`      // bills.created_at
	DiscountAmount int64  `json:"discountAmount"` // bills.discount_amount
}

// ValidPaymentMethod reports whether m is one of the accepted payment
// method literals.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentTransfer || m == PaymentCard
}

// TableRevenue is one row of the revenue-by-table report.
type TableRevenue struct {
	TableName  string `json:"tableName"`
	OrderCount int    `json:"orderCount"`
	Revenue    int64  `json:"revenue"`
}
