package core

import (
	"errors"
	"strings"
	"time"
)

// FallbackColor is used when an expense references a category that no
// longer exists. Dangling references are allowed: deleting a category
// must not touch the records that point at it.
const FallbackColor = "#607D8B"

type (
	Money struct {
		Cents int64
	}

	// Account is a recurring obligation with a due date and a paid flag.
	Account struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		DueDate   Date      `json:"dueDate"`
		Category  string    `json:"category"`
		Paid      bool      `json:"paid"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Expense is a one-time expenditure on a given date.
	Expense struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		Date      Date      `json:"date"`
		Category  string    `json:"category"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Category is a named classification with a display color. Accounts
	// and expenses reference it by name, not by id.
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Snapshot is the full persisted state: one record holding all three
	// collections in insertion order.
	Snapshot struct {
		Accounts   []Account  `json:"accounts"`
		Expenses   []Expense  `json:"expenses"`
		Categories []Category `json:"categories"`
	}
)

var (
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidColor  = errors.New("invalid color")
)

// DefaultCategories returns the seed set used when no persisted state
// exists yet. Names and colors are part of the persisted-state contract
// and must not change.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Alimentação", Color: "#FF6B6B"},
		{ID: "2", Name: "Transporte", Color: "#4ECDC4"},
		{ID: "3", Name: "Moradia", Color: "#F9C80E"},
		{ID: "4", Name: "Lazer", Color: "#7A5CF0"},
		{ID: "5", Name: "Saúde", Color: "#45B8AC"},
		{ID: "6", Name: "Educação", Color: "#D65DB1"},
		{ID: "7", Name: "Outros", Color: "#607D8B"},
	}
}

// Overdue reports whether the account is unpaid and its due date has
// passed. Pure read-time derivation; nothing schedules or stores this.
func (a Account) Overdue(now time.Time) bool {
	return !a.Paid && a.DueDate.Before(now)
}

type (
	// AccountInput carries the caller-supplied fields of a new account.
	// Id and creation timestamp are generated by the store.
	AccountInput struct {
		Name     string `json:"name"`
		Amount   Money  `json:"amount"`
		DueDate  Date   `json:"dueDate"`
		Category string `json:"category"`
		Paid     bool   `json:"paid"`
	}

	ExpenseInput struct {
		Name     string `json:"name"`
		Amount   Money  `json:"amount"`
		Date     Date   `json:"date"`
		Category string `json:"category"`
	}

	CategoryInput struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)

func (in AccountInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.DueDate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	return ValidateColor(in.Color)
}

// ValidateColor accepts only #RRGGBB hex colors.
func ValidateColor(s string) error {
	if len(s) != 7 || s[0] != '#' {
		return ErrInvalidColor
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return ErrInvalidColor
		}
	}
	return nil
}

// Amounts may be zero (a free expense still counts toward its category)
// but never negative.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
