package movies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Action, Drama,  Sci-Fi ,", []string{"Action", "Drama", "Sci-Fi"}},
		{"Horror", []string{"Horror"}},
		{" , , ", nil},
		{"", nil},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseGenres(tt.in), "input %q", tt.in)
	}
}
