// internal/store/store_test.go
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFieldHelpers(t *testing.T) {
	d := Document{
		"name":   "Rings",
		"price":  19.5,
		"active": true,
		"count":  3, // not float64: JSON numbers always decode as float64
	}

	assert.Equal(t, "Rings", d.String("name"))
	assert.Equal(t, "", d.String("missing"))
	assert.Equal(t, "", d.String("price")) // wrong type

	assert.Equal(t, 19.5, d.Float("price"))
	assert.Equal(t, 0.0, d.Float("count"))
	assert.Equal(t, 0.0, d.Float("missing"))

	b := d.Bool("active")
	require.NotNil(t, b)
	assert.True(t, *b)
	assert.Nil(t, d.Bool("missing"))
	assert.Nil(t, d.Bool("name"))
}
