package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mobile with punctuation", "(11) 98765-4321", "+55 11 98765-4321"},
		{"landline digits only", "1134567890", "+55 11 3456-7890"},
		{"already international", "+55 11 98765-4321", "+55 11 98765-4321"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"123", "telefone", "+55 00 0000"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := NormalizePhone(bad)
			assert.ErrorIs(t, err, ErrInvalidPhone)
		})
	}
}
