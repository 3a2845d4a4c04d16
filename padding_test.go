package turn

import "testing"

func TestNearestPaddedValueLength(t *testing.T) {
	tests := []struct {
		in  int
		out int
	}{
		{0, 0},
		{1, 4},
		{2, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{63, 64},
		{64, 64},
	}
	for _, tt := range tests {
		if got := nearestPaddedValueLength(tt.in); got != tt.out {
			t.Errorf("nearestPaddedValueLength(%d) = %d, want %d", tt.in, got, tt.out)
		}
	}
}
