// internal/domain/catalog/entity_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestCategoryVisible(t *testing.T) {
	assert.False(t, Category{ID: "1", IsActive: boolPtr(false)}.Visible())
	assert.True(t, Category{ID: "2"}.Visible())
	assert.True(t, Category{ID: "3", IsActive: boolPtr(true)}.Visible())
}

func TestVisibleCategoriesFiltersExplicitFalseOnly(t *testing.T) {
	categories := []Category{
		{ID: "1", IsActive: boolPtr(false)},
		{ID: "2"},
		{ID: "3", IsActive: boolPtr(true)},
	}

	visible := VisibleCategories(categories)

	ids := make([]string, 0, len(visible))
	for _, c := range visible {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)
}

func TestVisibleCategoriesEmptyInput(t *testing.T) {
	assert.Empty(t, VisibleCategories(nil))
}
