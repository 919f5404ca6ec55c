package sqlschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apigen-dev/sqlschema"
)

// TestEntityName verifies entity-name derivation from table names.
func TestEntityName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table string
		want  string
	}{
		{"users", "User"},
		{"user", "User"},
		{"user_accounts", "UserAccount"},
		{"order_items", "OrderItem"},
		{"categories", "Category"},
		{"people", "Person"},
		{"addresses", "Address"},
		{"api_keys", "APIKey"},
		{"oauth_tokens", "OauthToken"},
		{"user-roles", "UserRole"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqlschema.EntityName(tt.table), "table %q", tt.table)
	}
}

// TestTableName verifies the inverse derivation, entity to table name.
func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entity string
		want   string
	}{
		{"User", "users"},
		{"UserAccount", "user_accounts"},
		{"Category", "categories"},
		{"Person", "people"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqlschema.TableName(tt.entity), "entity %q", tt.entity)
	}
}

// TestEntityNameRoundTrip verifies that deriving a table name from an
// entity name and back is stable.
func TestEntityNameRoundTrip(t *testing.T) {
	t.Parallel()

	for _, entity := range []string{"User", "OrderItem", "Category", "Profile"} {
		table := sqlschema.TableName(entity)
		assert.Equal(t, entity, sqlschema.EntityName(table), "via table %q", table)
	}
}
