package units

import "testing"

func ptr(v int64) *int64 { return &v }

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   *int64
		want string
	}{
		{nil, "N/A"},
		{ptr(0), "0 B"},
		{ptr(512), "512.00 B"},
		{ptr(1023), "1023.00 B"},
		{ptr(1024), "1.00 KB"},
		{ptr(1536), "1.50 KB"},
		{ptr(1048576), "1.00 MB"},
		{ptr(5 * 1024 * 1024 * 1024), "5.00 GB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.in); got != c.want {
			t.Fatalf("FormatBytes(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseRate(t *testing.T) {
	cases := map[string]int64{
		"":          0,
		"garbage":   0,
		"-5KiB/s":   0,
		"500KiB/s":  500 * 1024,
		"2MiB/s":    2 * 1024 * 1024,
		"1.5mib":    1572864,
		"1MB":       1000 * 1000,
		"100":       100,
		"64kb/s":    64000,
		"1GiB/s":    1 << 30,
		" 10 KiB ":  10 * 1024,
	}
	for in, want := range cases {
		if got := ParseRate(in); got != want {
			t.Fatalf("ParseRate(%q) = %d, want %d", in, got, want)
		}
	}
}
