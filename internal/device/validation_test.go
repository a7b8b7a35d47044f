package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidate_Validate(t *testing.T) {
	valid := Candidate{Name: "Porch", Model: "selflearning-switch", Protocol: "arctech"}

	tests := []struct {
		name    string
		mutate  func(*Candidate)
		wantErr bool
	}{
		{"valid", func(*Candidate) {}, false},
		{"empty name", func(c *Candidate) { c.Name = "" }, true},
		{"empty model", func(c *Candidate) { c.Model = "" }, true},
		{"empty protocol", func(c *Candidate) { c.Protocol = "" }, true},
		{"name too long", func(c *Candidate) { c.Name = strings.Repeat("x", 65) }, true},
		{"quote in name", func(c *Candidate) { c.Name = `Porch "front"` }, true},
		{"newline in model", func(c *Candidate) { c.Model = "a\nb" }, true},
		{"tab in name", func(c *Candidate) { c.Name = "a\tb" }, true},
		{"brace in protocol", func(c *Candidate) { c.Protocol = "arctech}" }, true},
		{"spaces allowed", func(c *Candidate) { c.Name = "Living room lamp" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidCandidate), "error = %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
