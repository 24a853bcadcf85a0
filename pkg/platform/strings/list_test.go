package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "blank", input: "   ", expected: nil},
		{name: "single", input: "holiday", expected: []string{"holiday"}},
		{name: "trims and keeps order", input: " beta , holiday", expected: []string{"beta", "holiday"}},
		{name: "drops empty and repeated", input: "holiday,,beta, holiday ,", expected: []string{"holiday", "beta"}},
		{name: "case sensitive", input: "Beta,beta", expected: []string{"Beta", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Nil(t, Dedupe(nil))
	assert.Equal(t, []string{}, Dedupe([]string{}))
	assert.Equal(t, []string{"foo", "bar"}, Dedupe([]string{"  foo ", "bar", "foo", "", "  ", "bar"}))
}
