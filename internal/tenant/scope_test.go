package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScope(t *testing.T) {
	_, err := NewScope(uuid.Nil)
	assert.ErrorIs(t, err, ErrNoTenant)

	id := uuid.New()
	s, err := NewScope(id)
	require.NoError(t, err)
	assert.Equal(t, id, s.OrganizationID())
	assert.NoError(t, s.Validate())
	assert.ErrorIs(t, Scope{}.Validate(), ErrNoTenant)
}

func TestScopeContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s, err := NewScope(uuid.New())
	require.NoError(t, err)

	got, ok := FromContext(WithScope(context.Background(), s))
	assert.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = FromContext(WithScope(context.Background(), Scope{}))
	assert.False(t, ok)
}
