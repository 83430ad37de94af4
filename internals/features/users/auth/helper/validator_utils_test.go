package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia123", hash)
	assert.NoError(t, CheckPasswordHash(hash, "rahasia123"))
	assert.Error(t, CheckPasswordHash(hash, "salah"))
}

func TestPhoneAndEmail(t *testing.T) {
	assert.True(t, IsValidPhone("+62 812-3456 (789)"))
	assert.False(t, IsValidPhone("0812abc"))
	assert.True(t, IsValidEmail("budi@test.com"))
	assert.False(t, IsValidEmail("budi@"))
	assert.Equal(t, "budi@test.com", NormalizeEmail("  Budi@Test.COM "))
}
