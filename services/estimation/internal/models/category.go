package models

import "fmt"

// Category selects the estimation formula and base rate for a job.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryTour      Category = "tour"
	CategoryService   Category = "service"
	CategoryFinancing Category = "financing"
)

// ParseCategory converts a raw string to a Category. Matching is
// case-sensitive, like the values stored with a job.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown job category %q", s)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryTour, CategoryService, CategoryFinancing:
		return true
	}
	return false
}
