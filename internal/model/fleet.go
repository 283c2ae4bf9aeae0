package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBoatNotFound is returned when no boat matches a name.
var ErrBoatNotFound = errors.New("boat not found")

// Fleet is the ordered list of boats for one run.
// Names are not unique; lookups return the first inserted match.
type Fleet struct {
	boats []*Boat
}

// NewFleet creates a fleet holding the given boats in order.
func NewFleet(boats ...*Boat) *Fleet {
	f := &Fleet{boats: make([]*Boat, 0, len(boats))}
	for _, b := range boats {
		f.Add(b)
	}
	return f
}

// Add appends a boat.
func (f *Fleet) Add(b *Boat) {
	f.boats = append(f.boats, b)
}

// Len returns the number of boats.
func (f *Fleet) Len() int {
	return len(f.boats)
}

// Boats returns the boats in insertion order.
// The slice is a copy; the boats are shared.
func (f *Fleet) Boats() []*Boat {
	out := make([]*Boat, len(f.boats))
	copy(out, f.boats)
	return out
}

// FindByName returns the first boat whose name matches, ignoring case.
func (f *Fleet) FindByName(name string) (*Boat, bool) {
	i := f.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return f.boats[i], true
}

// RemoveByName removes the first boat whose name matches, ignoring case.
func (f *Fleet) RemoveByName(name string) error {
	i := f.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBoatNotFound, strings.TrimSpace(name))
	}
	f.boats = append(f.boats[:i], f.boats[i+1:]...)
	return nil
}

// RequestExpense charges amount against the named boat.
func (f *Fleet) RequestExpense(name string, amount Money) (ExpenseResult, error) {
	b, ok := f.FindByName(name)
	if !ok {
		return ExpenseResult{}, fmt.Errorf("%w: %s", ErrBoatNotFound, strings.TrimSpace(name))
	}
	return b.TryAddExpense(amount), nil
}

// TotalPaid sums the purchase prices.
func (f *Fleet) TotalPaid() Money {
	var total Money
	for _, b := range f.boats {
		total += b.PurchasePrice
	}
	return total
}

// TotalSpent sums the expenses.
func (f *Fleet) TotalSpent() Money {
	var total Money
	for _, b := range f.boats {
		total += b.Expenses
	}
	return total
}

// Render formats every boat followed by the totals line.
func (f *Fleet) Render() string {
	var sb strings.Builder
	for _, b := range f.boats {
		sb.WriteString(b.Render())
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("%-52s : Paid %12s : Spent %12s\n",
		"Total", f.TotalPaid(), f.TotalSpent()))
	return sb.String()
}

func (f *Fleet) indexOf(name string) int {
	name = strings.TrimSpace(name)
	for i, b := range f.boats {
		if strings.EqualFold(b.Name, name) {
			return i
		}
	}
	return -1
}
