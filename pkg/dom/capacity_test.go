package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		text   string
		ok     bool
		full   bool
		parsed Capacity
	}{
		{text: "50 / 50", ok: true, full: true, parsed: Capacity{50, 50}},
		{text: "12/50", ok: true, full: false, parsed: Capacity{12, 50}},
		{text: "51 / 50 sources", ok: true, full: true, parsed: Capacity{51, 50}},
		{text: "abc / 50", ok: false},
		{text: "50 / --", ok: false},
		{text: "50", ok: false},
		{text: "1/2/3", ok: false},
		{text: " / ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, ok := ParseCapacity(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.parsed, c)
				assert.Equal(t, tt.full, c.Full())
			}
		})
	}
}
