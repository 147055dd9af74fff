package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	t.Setenv("SHOEFINDERZ_LOG_FORMAT", "  ")
	t.Setenv("LOG_FORMAT", "console")
	assert.Equal(t, "console", First("json", "SHOEFINDERZ_LOG_FORMAT", "LOG_FORMAT"))

	t.Setenv("SHOEFINDERZ_LOG_FORMAT", "json")
	assert.Equal(t, "json", First("console", "SHOEFINDERZ_LOG_FORMAT", "LOG_FORMAT"))

	assert.Equal(t, "fallback", First("fallback", "SHOEFINDERZ_UNSET_FOR_TEST"))
	assert.Equal(t, "fallback", First("fallback"))
}
