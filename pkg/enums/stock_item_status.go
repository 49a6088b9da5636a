package enums

import "fmt"

// StockItemStatus tracks a digital stock line from intake to delivery.
type StockItemStatus string

const (
	StockItemStatusAvailable StockItemStatus = "available"
	StockItemStatusReserved  StockItemStatus = "reserved"
	StockItemStatusDelivered StockItemStatus = "delivered"
)

var validStockItemStatuses = []StockItemStatus{
	StockItemStatusAvailable,
	StockItemStatusReserved,
	StockItemStatusDelivered,
}

// IsValid reports whether the value matches the canonical stock item status enum.
func (s StockItemStatus) IsValid() bool {
	for _, candidate := range validStockItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockItemStatus converts the raw string to StockItemStatus.
func ParseStockItemStatus(value string) (StockItemStatus, error) {
	for _, candidate := range validStockItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock item status %q", value)
}
