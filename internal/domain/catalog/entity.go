// internal/domain/catalog/entity.go
package catalog

// Category is a reference-data record from the categories collection.
// IsActive is a tri-state flag: only an explicit false hides the category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Visible reports whether the category should be shown to users.
// Absence of the flag means active.
func (c Category) Visible() bool {
	return c.IsActive == nil || *c.IsActive
}

// VisibleCategories filters out categories explicitly marked inactive,
// preserving order.
func VisibleCategories(categories []Category) []Category {
	visible := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Visible() {
			visible = append(visible, c)
		}
	}
	return visible
}

// Product is read-only from this layer's perspective.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category"` // category slug
}
