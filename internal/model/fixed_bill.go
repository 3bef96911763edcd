package model

import "time"

// FixedBill is a recurring monthly obligation registered by the user.
type FixedBill struct {
	CreatedAt  time.Time
	LastPaidAt *time.Time
	ID         string
	Name       string  `validate:"required,min=2"`
	Category   string  `validate:"required"`
	Amount     float64 `validate:"gte=0"`
	DueDay     int     `validate:"min=1,max=31"`
	IsActive   bool
}

// PaidIn reports whether the bill was paid in the month containing t.
func (b *FixedBill) PaidIn(t time.Time) bool {
	if b.LastPaidAt == nil {
		return false
	}
	py, pm, _ := b.LastPaidAt.Date()
	y, m, _ := t.Date()
	return py == y && pm == m
}

// DueDate returns the bill's due date in the month containing t. Due days past
// the end of a short month fall on its last day.
func (b *FixedBill) DueDate(t time.Time) time.Time {
	y, m, _ := t.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
	day := min(b.DueDay, last)
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

// ActiveBills filters out inactive bills.
func ActiveBills(bills []FixedBill) []FixedBill {
	active := make([]FixedBill, 0, len(bills))
	for _, b := range bills {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active
}

// NewFixedBill is the input for registering a recurring bill.
type NewFixedBill struct {
	Name     string  `validate:"required,min=2,max=60"`
	Category string  `validate:"required"`
	Amount   float64 `validate:"gt=0"`
	DueDay   int     `validate:"min=1,max=31"`
}

// FixedBillUpdate carries the bill fields to change. Nil fields are left alone.
type FixedBillUpdate struct {
	Amount     *float64
	DueDay     *int
	IsActive   *bool
	LastPaidAt *time.Time
}
