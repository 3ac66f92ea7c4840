package tokenizer

import (
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		starts   []int
		ends     []int
	}{
		{"simple word", "Hi", "▁Hi", []int{0, 0, 1}, []int{0, 1, 2}},
		{"two words", "a b", "▁a▁b", []int{0, 0, 2, 2}, []int{0, 1, 2, 3}},
		{"extra spaces", "  ok  ", "▁ok", []int{2, 2, 3}, []int{2, 3, 4}},
		{"multibyte", "é x", "▁é▁x", []int{0, 0, 2, 2}, []int{0, 1, 2, 3}},
		{"empty string", "", "", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalize(tc.input)
			if got.String() != tc.expected {
				t.Errorf("normalize(%q) = %q, want %q", tc.input, got.String(), tc.expected)
			}
			if !slices.Equal(got.starts, tc.starts) {
				t.Errorf("starts = %v, want %v", got.starts, tc.starts)
			}
			if !slices.Equal(got.ends, tc.ends) {
				t.Errorf("ends = %v, want %v", got.ends, tc.ends)
			}
		})
	}
}
