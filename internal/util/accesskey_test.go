package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAccessKey(t *testing.T) {
	t.Run("has expected length", func(t *testing.T) {
		key := GenerateAccessKey()
		assert.Len(t, key, AccessKeyLength)
	})

	t.Run("uses only unambiguous characters", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			key := GenerateAccessKey()
			for _, c := range key {
				assert.Contains(t, accessKeyChars, string(c))
			}
			assert.NotContains(t, key, "I")
			assert.NotContains(t, key, "O")
			assert.NotContains(t, key, "0")
			assert.NotContains(t, key, "1")
		}
	})

	t.Run("keys vary across calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			seen[GenerateAccessKey()] = true
		}
		assert.Greater(t, len(seen), 1)
	})
}

func TestNormalizeAccessKey(t *testing.T) {
	assert.Equal(t, "AB2CD3", NormalizeAccessKey("  ab2cd3 "))
	assert.Equal(t, "AB2CD3", NormalizeAccessKey("AB2CD3"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(strings.ToUpper("123e4567-e89b-12d3-a456-426614174000")))
}
