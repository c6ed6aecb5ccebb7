package format

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatBytes formats a byte count into a human-readable string with 1 decimal place.
// Thresholds: <1KB → B, <1MB → KB, <1GB → MB, <1TB → GB, else TB.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes < tb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	default:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	}
}

// FormatHashrate formats hashes per second with a decimal SI prefix.
// Example: 0 → "0 H/s", 1532 → "1.53 kH/s", 2.4e9 → "2.40 GH/s".
// Negative values return "---".
func FormatHashrate(hps float64) string {
	const (
		k = 1e3
		m = 1e6
		g = 1e9
		t = 1e12
	)
	switch {
	case hps < 0:
		return "---"
	case hps == 0:
		return "0 H/s"
	case hps < k:
		return fmt.Sprintf("%.0f H/s", hps)
	case hps < m:
		return fmt.Sprintf("%.2f kH/s", hps/k)
	case hps < g:
		return fmt.Sprintf("%.2f MH/s", hps/m)
	case hps < t:
		return fmt.Sprintf("%.2f GH/s", hps/g)
	default:
		return fmt.Sprintf("%.2f TH/s", hps/t)
	}
}

// MicroPerXTM is the number of micro-XTM in one XTM.
const MicroPerXTM = 1_000_000

// FormatXTM formats a micro-XTM amount as XTM with comma-separated
// thousands and two decimal places, truncating rather than rounding.
// Example: 1234567890 → "1,234.56 XTM".
func FormatXTM(micro uint64) string {
	whole := micro / MicroPerXTM
	cents := (micro % MicroPerXTM) / (MicroPerXTM / 100)
	return fmt.Sprintf("%s.%02d XTM", insertCommas(strconv.FormatUint(whole, 10)), cents)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		// s starts with "-"; strip it, insert commas, restore sign.
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPoints formats an airdrop points total with comma separators and no
// fractional part.
func FormatPoints(p float64) string {
	return formatCommaFloat(p, 0)
}

// FormatPercent formats a percentage with one decimal place.
// Example: 34.5 → "34.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// formatCommaFloat formats a float with comma-separated thousands and prec decimal places.
func formatCommaFloat(f float64, prec int) string {
	formatted := strconv.FormatFloat(f, 'f', prec, 64)
	// Strip leading minus before inserting commas, then restore it
	sign := ""
	if len(formatted) > 0 && formatted[0] == '-' {
		sign = "-"
		formatted = formatted[1:]
	}
	// Split on decimal point
	parts := strings.SplitN(formatted, ".", 2)
	intPart := insertCommas(parts[0])
	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
