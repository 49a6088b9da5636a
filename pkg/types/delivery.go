package types

// DeliveredItem is one fulfilled line of a delivered order: the digital
// content released to the customer plus post-sale instructions.
type DeliveredItem struct {
	ProductName  string   `json:"product_name"`
	Qty          int      `json:"qty"`
	Contents     []string `json:"contents"`
	Instructions string   `json:"instructions,omitempty"`
}

// DeliveredItems is the jsonb payload stored on a delivered order.
type DeliveredItems []DeliveredItem
