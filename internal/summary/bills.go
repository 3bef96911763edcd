package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/dinah/internal/model"
)

// BillStatus splits the active fixed bills of the current month.
type BillStatus struct {
	Now      time.Time
	Overdue  []model.FixedBill
	Upcoming []model.FixedBill
	Paid     []model.FixedBill
}

// ClassifyBills places each active bill relative to today: paid this month,
// overdue (due date passed and unpaid) or due within the next week. Bills
// due later than that are left out.
func ClassifyBills(bills []model.FixedBill, now time.Time) BillStatus {
	status := BillStatus{Now: now}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, b := range model.ActiveBills(bills) {
		due := b.DueDate(now)
		switch {
		case b.PaidIn(now):
			status.Paid = append(status.Paid, b)
		case due.Before(today):
			status.Overdue = append(status.Overdue, b)
		case due.Sub(today) <= upcomingWindow:
			status.Upcoming = append(status.Upcoming, b)
		}
	}
	return status
}

// Empty reports whether there is nothing to say about bills.
func (s BillStatus) Empty() bool {
	return len(s.Overdue) == 0 && len(s.Upcoming) == 0 && len(s.Paid) == 0
}

func (s BillStatus) String() string {
	var lines []string
	lines = append(lines, "Contas fixas:")
	for _, b := range s.Overdue {
		lines = append(lines, fmt.Sprintf("• %s: %s, vencida no dia %d", b.Name, model.FormatBRL(b.Amount), b.DueDate(s.Now).Day()))
	}
	for _, b := range s.Upcoming {
		lines = append(lines, fmt.Sprintf("• %s: %s, vence no dia %d", b.Name, model.FormatBRL(b.Amount), b.DueDate(s.Now).Day()))
	}
	if len(s.Paid) > 0 {
		names := make([]string, len(s.Paid))
		for i, b := range s.Paid {
			names[i] = b.Name
		}
		lines = append(lines, "• Pagas este mês: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}
