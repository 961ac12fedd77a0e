package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	crore = 10000000
	lakh  = 100000
)

// FormatINR renders whole rupees the way the Indian listings display them
func FormatINR(price int64) string {
	switch {
	case price <= 0:
		return "Price on request"
	case price >= crore:
		return "₹" + trimDecimals(float64(price)/crore) + " Cr"
	case price >= lakh:
		return "₹" + trimDecimals(float64(price)/lakh) + " L"
	default:
		return "₹" + groupThousands(price)
	}
}

// FormatAED renders whole dirhams with thousands separators
func FormatAED(price int64) string {
	if price <= 0 {
		return "Price on request"
	}
	return "AED " + groupThousands(price)
}

func trimDecimals(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
