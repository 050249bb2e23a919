package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1200000", 1200000, true},
		{"1.200.000", 1200000, true},
		{"1,200,000", 1200000, true},
		{" 35000 ", 35000, true},
		{"0", 0, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"12..000", 0, false},
		{".500", 0, false},
		{"500.", 0, false},
		{"12a00", 0, false},
		{"99999999999999999999", 0, false}, // overflows int64
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseAmount(%q) expected error, got %d", tc.in, got)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
