package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLoginName(t *testing.T) {
	assert.True(t, ValidLoginName("tom"))
	assert.True(t, ValidLoginName("tom.trainer@site-4"))
	assert.False(t, ValidLoginName(""))
	assert.False(t, ValidLoginName("tom trainer"))
	assert.False(t, ValidLoginName(strings.Repeat("a", 65)))
}

func TestValidFullName(t *testing.T) {
	assert.True(t, ValidFullName("Tom Trainer"))
	assert.True(t, ValidFullName(strings.Repeat("é", 200)))
	assert.False(t, ValidFullName(""))
	assert.False(t, ValidFullName(strings.Repeat("é", 201)))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("s3cr"))
	assert.False(t, ValidPassword("abc"))
	assert.False(t, ValidPassword(strings.Repeat("x", 73)))
}
