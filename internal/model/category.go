package model

import "strings"

// DefaultCategoryName is the sentinel category that always exists.
// Transactions of a deleted category are reassigned to it.
const DefaultCategoryName = "Lainnya"

// Category is a named grouping for transactions.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// IsDefault reports whether this is the sentinel default category.
func (c *Category) IsDefault() bool {
	return c.Name == DefaultCategoryName
}

// SameName compares category names ignoring case.
func (c *Category) SameName(name string) bool {
	return strings.EqualFold(c.Name, name)
}

// CreateCategoryInput holds the user-supplied fields of a new category.
type CreateCategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// DefaultCategory describes a built-in category seeded on first use.
type DefaultCategory struct {
	Name  string
	Color string
}

// DefaultCategories are seeded when no categories have been stored yet.
var DefaultCategories = []DefaultCategory{
	{Name: "Makanan", Color: "#4F46E5"},
	{Name: "Transport", Color: "#22C55E"},
	{Name: "Belanja", Color: "#F59E0B"},
	{Name: "Hiburan", Color: "#EC4899"},
	{Name: "Kesehatan", Color: "#06B6D4"},
	{Name: DefaultCategoryName, Color: "#8B5CF6"},
}

// FindCategoryByName returns the category with exactly the given name.
func FindCategoryByName(categories []Category, name string) *Category {
	for i := range categories {
		if categories[i].Name == name {
			return &categories[i]
		}
	}
	return nil
}

// CategoryNames returns the names of the given categories in order.
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	return names
}
