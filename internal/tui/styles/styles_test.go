package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := map[float64]string{
		0:          "R$ 0,00",
		0.5:        "R$ 0,50",
		45:         "R$ 45,00",
		1850:       "R$ 1.850,00",
		1234567.89: "R$ 1.234.567,89",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(in), "price %v", in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "Resid...", Truncate("Residencial Jardins", 8))
	assert.Equal(t, "São...", Truncate("São Paulo", 6))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "Sofá  ", Pad("Sofá", 6))
	assert.Equal(t, "Sofá", Pad("Sofá", 4))
}
