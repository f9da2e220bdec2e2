package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("alice@example.com"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail("alice"))
	assert.False(t, IsEmail("alice@"))
	assert.False(t, IsEmail(strings.Repeat("a", MaxEmailLength)+"@example.com"))
}

func TestIsUsername(t *testing.T) {
	assert.True(t, IsUsername("bob"))
	assert.True(t, IsUsername("小明同学"))
	assert.False(t, IsUsername("ab"))
	assert.False(t, IsUsername("   "))
	assert.False(t, IsUsername(strings.Repeat("x", MaxUsernameLength+1)))
}

func TestIsPassword(t *testing.T) {
	assert.True(t, IsPassword("correct horse"))
	assert.False(t, IsPassword("short"))
	assert.False(t, IsPassword(strings.Repeat("p", MaxPasswordLength+1)))
}
