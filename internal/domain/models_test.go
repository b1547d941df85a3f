package domain

import "testing"

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{7, 10, 70},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{5, 0, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestPercentageAlwaysInBounds(t *testing.T) {
	for total := 1; total <= 20; total++ {
		for score := 0; score <= total; score++ {
			got := Percentage(score, total)
			if got < 0 || got > 100 {
				t.Fatalf("Percentage(%d, %d) = %d out of bounds", score, total, got)
			}
		}
	}
}
