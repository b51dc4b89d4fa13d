package twee

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_AsBool(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected bool
	}{
		{"zero int is false", Int(0), false},
		{"nonzero int is true", Int(7), true},
		{"negative int is true", Int(-1), true},
		{"bool passes through true", Bool(true), true},
		{"bool passes through false", Bool(false), false},
		{"empty string is false", StringVal(""), false},
		{"nonempty string is true", StringVal("0"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.AsBool())
		})
	}
}

func TestValue_AsInt(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected int32
	}{
		{"int passes through", Int(42), 42},
		{"true is 1", Bool(true), 1},
		{"false is 0", Bool(false), 0},
		{"empty string is 0", StringVal(""), 0},
		{"nonempty non-numeric string is 1, not parsed", StringVal("abc"), 1},
		{"nonempty numeric-looking string is still 1, not 99", StringVal("99"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.AsInt())
		})
	}
}

func TestValue_AsString(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected string
	}{
		{"int to decimal", Int(-13), "-13"},
		{"true to \"true\"", Bool(true), "true"},
		{"false to \"false\"", Bool(false), "false"},
		{"string passes through", StringVal("hi"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.AsString())
		})
	}
}

func TestValue_AsString_IntDecimalRoundTrip(t *testing.T) {
	// AsString on an Int renders a decimal that parses back to n. The parse
	// uses strconv, not AsInt: AsInt maps any non-empty String to 1, so
	// feeding the rendered string back through a String Value would not
	// recover n.
	for _, n := range []int32{0, 1, -1, 42, -42, 1 << 20} {
		got := Int(n).AsString()
		back, err := strconv.ParseInt(got, 10, 32)
		assert.NoError(t, err)
		assert.Equal(t, n, int32(back))
	}
}
