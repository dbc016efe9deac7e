package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "single char rounds up", input: "a", want: 1},
		{name: "exactly one token", input: "abcd", want: 1},
		{name: "five chars rounds up", input: "abcde", want: 2},
		{name: "hundred chars", input: strings.Repeat("x", 100), want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.input))
		})
	}
}
