// Package units formats byte counts and parses transfer rate strings.
package units

import (
	"fmt"
	"strings"
)

// NotAvailable is rendered for unknown sizes.
const NotAvailable = "N/A"

var sizeNames = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders a byte count with binary-prefix units and two decimals,
// e.g. 1536 -> "1.50 KB". Nil yields "N/A" and zero yields "0 B".
func FormatBytes(size *int64) string {
	if size == nil {
		return NotAvailable
	}
	if *size == 0 {
		return "0 B"
	}
	v := float64(*size)
	i := 0
	for v >= 1024 && i < len(sizeNames)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, sizeNames[i])
}

// ParseRate parses strings like "2MiB/s", "500KiB/s" or "1MB" into bytes per
// second. Empty or malformed input yields 0 (no limit).
func ParseRate(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "/S"))
	sfx := ""
	for _, suf := range []string{"KIB", "MIB", "GIB", "KB", "MB", "GB", "B"} {
		if strings.HasSuffix(s, suf) {
			sfx = suf
			s = strings.TrimSuffix(s, suf)
			break
		}
	}
	s = strings.TrimSpace(s)
	var val float64
	if _, err := fmt.Sscanf(s, "%f", &val); err != nil || val <= 0 {
		return 0
	}
	mul := int64(1)
	switch sfx {
	case "KIB":
		mul = 1024
	case "MIB":
		mul = 1024 * 1024
	case "GIB":
		mul = 1024 * 1024 * 1024
	case "KB":
		mul = 1000
	case "MB":
		mul = 1000 * 1000
	case "GB":
		mul = 1000 * 1000 * 1000
	}
	return int64(val * float64(mul))
}
