package tui

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestLayoutBarGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	left := "[tab] next [^s] save"
	right := "Tasks new"

	g.Assert(t, "bottom_bar_wide", []byte(layoutBar(left, right, 38)))
	g.Assert(t, "bottom_bar_tight", []byte(layoutBar(left, right, 20)))
	g.Assert(t, "bottom_bar_nowidth", []byte(layoutBar(left, right, 0)))
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
