package ticketing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScanCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := newScanCode()
		require.NoError(t, err)
		assert.Len(t, code, 2*scanCodeBytes)
		assert.Regexp(t, "^[0-9A-F]+$", code)
		assert.False(t, seen[code])
		seen[code] = true
	}
}
