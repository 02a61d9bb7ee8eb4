// internal/domain/auth/entity_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoleDefaultsToCustomer(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleCustomer, ParseRole("customer"))
	assert.Equal(t, RoleCustomer, ParseRole(""))
	assert.Equal(t, RoleCustomer, ParseRole("superuser"))
	assert.Equal(t, RoleCustomer, ParseRole("Admin")) // exact match only
}
