package model

// Supply is a consumable tracked by quantity.
type Supply struct {
	ID                int64   `json:"supplyId,omitempty"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku,omitempty"`
	Description       string  `json:"description,omitempty"`
	Price             float64 `json:"price,omitempty"`
	Quantity          float64 `json:"quantity,omitempty"`
	CurrentStock      float64 `json:"currentStock"`
	MaximumQuantity   float64 `json:"maximumQuantity"`
	ReorderLevel      float64 `json:"reorderLevel"`
	UnitOfMeasurement string  `json:"unitOfMeasurement,omitempty"`
}

// LowStock reports whether the supply is at or below its reorder level.
func (s Supply) LowStock() bool {
	return s.CurrentStock <= s.ReorderLevel
}

// StockPercent is current stock as a percentage of the maximum quantity,
// clamped to 0..100. A supply without a maximum reports 0.
func (s Supply) StockPercent() float64 {
	if s.MaximumQuantity <= 0 {
		return 0
	}
	p := s.CurrentStock / s.MaximumQuantity * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
