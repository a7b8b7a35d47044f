package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigBlock(t *testing.T) {
	got := ConfigBlock(3, "A", Candidate{Name: "Porch", Model: "selflearning-switch", Protocol: "arctech"})

	want := "\ndevice {\n" +
		"  id = 3\n" +
		"  name = \"Porch\"\n" +
		"  protocol = \"arctech\"\n" +
		"  model = \"selflearning-switch\"\n" +
		"  parameters {\n" +
		"    house = \"A\"\n" +
		"    unit = \"3\"\n" +
		"  }\n" +
		"}\n"

	assert.Equal(t, want, got)
}

func TestConfigBlock_KeepsUnicodeNames(t *testing.T) {
	got := ConfigBlock(1, "B", Candidate{Name: "Kök", Model: "codeswitch", Protocol: "risingsun"})
	assert.Contains(t, got, `name = "Kök"`)
	assert.Contains(t, got, `house = "B"`)
}
