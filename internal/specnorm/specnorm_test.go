package specnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"armoured":   Armored,
		" ARMORED ":  Armored,
		"xlpe":       XLPE,
		"Pvc":        PVC,
		"aluminium":  Aluminum,
		"Alumínium":  Aluminum,
		"COPPER":     Copper,
		"EPR":        "EPR",
		"  General ": "General",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), "input %q", in)
	}
}

func TestArmoring(t *testing.T) {
	assert.Equal(t, Armored, Armoring("armoured"))
	assert.Equal(t, Unarmored, Armoring("Unarmoured"))
	assert.Equal(t, Unarmored, Armoring("steel tape"))
	assert.Equal(t, "", Armoring(" "))
}

func TestVoltage(t *testing.T) {
	cases := map[string]string{
		"11kv":        "11 kV",
		"11 KV":       "11 kV",
		"33 k V":      "33 kV",
		"rated 22kV":  "22 kV",
		"440V":        "440V",
		"":            "",
		"unspecified": "unspecified",
	}
	for in, want := range cases {
		assert.Equal(t, want, Voltage(in), "input %q", in)
	}
}

func TestVoltageWithin(t *testing.T) {
	assert.True(t, VoltageWithin("11 kV", "11 kV", 1))
	assert.True(t, VoltageWithin("11 kV", "12 kV", 1))
	assert.False(t, VoltageWithin("11 kV", "33 kV", 1))
	assert.True(t, VoltageWithin("HV", "HV", 1))
	assert.False(t, VoltageWithin("HV", "11 kV", 1))
}
