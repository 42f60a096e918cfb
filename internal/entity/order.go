package entity

// Order statuses. Any string may be stored, but only StatusActive allows
// line items to be attached and only StatusComplete shows up in the
// completed-orders listing.
const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

type Order struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Status string `json:"status"`
}

// OrderProduct is a line item: a product attached to an order with a
// quantity. The order owns it; deleting the order deletes its line items.
type OrderProduct struct {
	ID        int `json:"id"`
	OrderID   int `json:"order_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
