package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidity(t *testing.T) {
	tests := []struct {
		in      string
		seconds int
		ok      bool
	}{
		{"1h", 3600, true},
		{"7d", 604800, true},
		{"120", 120, true},
		{"30m", 1800, true},
		{"24H", 86400, true},
		{" 2d ", 172800, true},
		{"0", 0, true},
		{"", 0, false},
		{"forever", 0, false},
		{"-1h", 0, false},
		{"1.5h", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseValidity(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.seconds, got)
			}
		})
	}
}

func TestFormatValidity(t *testing.T) {
	assert.Equal(t, "1d", FormatValidity(86400))
	assert.Equal(t, "1h", FormatValidity(3600))
	assert.Equal(t, "90m", FormatValidity(5400))
	assert.Equal(t, "45", FormatValidity(45))
}
