package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "hello", TruncateForLog("  hello  ", 10))
	assert.Equal(t, "hel...", TruncateForLog("hello", 3))
	assert.Equal(t, "żół...", TruncateForLog("żółw", 3))
	assert.Equal(t, "", TruncateForLog("hello", 0))
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		l, err := New(json, !json)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}
