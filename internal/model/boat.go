// Package model defines the core data structures of the fleet ledger.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the kind of boat.
type Category string

// Boat categories.
const (
	CategorySailing Category = "SAILING"
	CategoryPower   Category = "POWER"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategorySailing, CategoryPower}

// ErrInvalidBoat is returned when boat attributes fail validation.
var ErrInvalidBoat = errors.New("invalid boat")

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidBoat, s)
}

// Bounds holds the limits applied when a boat is constructed.
type Bounds struct {
	MaxPrice  Money
	MinLength int
	MaxLength int
	MinYear   int
	MaxYear   int
}

// DefaultBounds returns the club's standard limits.
func DefaultBounds() Bounds {
	return Bounds{
		MinLength: 1,
		MaxLength: 100,
		MaxPrice:  Cents(1_000_000, 0),
		MinYear:   1800,
		MaxYear:   9999,
	}
}

// Validate checks that the bounds describe a non-empty range.
func (b Bounds) Validate() error {
	if b.MinLength < 0 || b.MaxLength < b.MinLength {
		return fmt.Errorf("length bounds %d..%d are invalid", b.MinLength, b.MaxLength)
	}
	if b.MaxPrice <= 0 {
		return fmt.Errorf("max price must be positive")
	}
	if b.MaxYear < b.MinYear {
		return fmt.Errorf("year bounds %d..%d are invalid", b.MinYear, b.MaxYear)
	}
	return nil
}

// Boat is one vessel owned by the club.
// Expenses never exceeds PurchasePrice.
type Boat struct {
	Category      Category
	Name          string
	MakeModel     string
	Year          int
	Length        int
	PurchasePrice Money
	Expenses      Money
}

// NewBoat validates the attributes and returns a boat with no expenses.
func NewBoat(category Category, name string, year int, makeModel string, length int, price Money, bounds Bounds) (*Boat, error) {
	cat, err := ParseCategory(string(category))
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidBoat)
	}
	if year < bounds.MinYear || year > bounds.MaxYear {
		return nil, fmt.Errorf("%w: year %d must be between %d and %d", ErrInvalidBoat, year, bounds.MinYear, bounds.MaxYear)
	}
	if length < bounds.MinLength || length > bounds.MaxLength {
		return nil, fmt.Errorf("%w: length %d must be between %d and %d", ErrInvalidBoat, length, bounds.MinLength, bounds.MaxLength)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidBoat)
	}
	if price >= bounds.MaxPrice {
		return nil, fmt.Errorf("%w: price %s must be less than %s", ErrInvalidBoat, price, bounds.MaxPrice)
	}

	return &Boat{
		Category:      cat,
		Name:          name,
		Year:          year,
		MakeModel:     strings.TrimSpace(makeModel),
		Length:        length,
		PurchasePrice: price,
	}, nil
}

// ExpenseStatus is the outcome of an expense request.
type ExpenseStatus string

// Expense outcomes.
const (
	ExpenseAuthorized ExpenseStatus = "authorized"
	ExpenseDenied     ExpenseStatus = "denied"
	ExpenseRejected   ExpenseStatus = "rejected"
)

// ExpenseResult reports what happened to an expense request.
// Remaining is computed before any mutation.
type ExpenseResult struct {
	Status    ExpenseStatus
	Spent     Money
	Total     Money
	Remaining Money
}

// Authorized reports whether the expense was recorded.
func (r ExpenseResult) Authorized() bool {
	return r.Status == ExpenseAuthorized
}

// TryAddExpense charges amount against the boat if it fits under the purchase price.
func (b *Boat) TryAddExpense(amount Money) ExpenseResult {
	remaining := b.RemainingBudget()
	if amount < 0 {
		return ExpenseResult{Status: ExpenseRejected, Total: b.Expenses, Remaining: remaining}
	}
	if amount > remaining {
		return ExpenseResult{Status: ExpenseDenied, Total: b.Expenses, Remaining: remaining}
	}

	b.Expenses += amount
	return ExpenseResult{
		Status:    ExpenseAuthorized,
		Spent:     amount,
		Total:     b.Expenses,
		Remaining: b.RemainingBudget(),
	}
}

// RemainingBudget is the amount that can still be spent, never below zero.
func (b *Boat) RemainingBudget() Money {
	if b.Expenses >= b.PurchasePrice {
		return 0
	}
	return b.PurchasePrice - b.Expenses
}

// Render formats the boat as one report line.
func (b *Boat) Render() string {
	return fmt.Sprintf("%-8s %-20s %4d %-12s %3d' : Paid %12s : Spent %12s",
		b.Category, b.Name, b.Year, b.MakeModel, b.Length,
		b.PurchasePrice, b.Expenses)
}
