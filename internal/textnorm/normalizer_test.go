package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \n\t ", want: ""},
		{name: "plain text", in: "Stocks  rose\ntoday.", want: "Stocks rose today."},
		{name: "markup", in: "<p>Shares <b>fell</b> 3.5 percent.</p><script>alert(1)</script>", want: "Shares fell 3.5 percent."},
		{name: "entities and punctuation", in: "AT&amp;T&#39;s profit, up!", want: "ATTs profit up"},
		{name: "unicode letters", in: "Zürich-based bank", want: "Zürichbased bank"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
