package prompt

import (
	"math"
	"strconv"
	"strings"
)

// Format renders rec as the single-line feature description the models expect.
// The output depends only on the field values, so equal records always
// produce byte-identical prompts.
func Format(rec CreditRecord) string {
	var b strings.Builder
	b.Grow(160)
	b.WriteString("Age: ")
	b.WriteString(strconv.Itoa(rec.Age))
	b.WriteString(", Occupation: ")
	b.WriteString(rec.Occupation)
	b.WriteString(", Annual Income: ")
	b.WriteString(formatDecimal(rec.AnnualIncome))
	b.WriteString(", Outstanding Debt: ")
	b.WriteString(formatDecimal(rec.OutstandingDebt))
	b.WriteString(", Credit Utilization Ratio: ")
	b.WriteString(formatDecimal(rec.CreditUtilization))
	b.WriteString(", Payment Behaviour: ")
	b.WriteString(rec.PaymentBehavior)
	return b.String()
}

// formatDecimal writes the shortest round-trip representation of v. Integral
// values keep a ".0" suffix and very large or small magnitudes switch to
// exponent form; this is the notation used in the fine-tuning data.
func formatDecimal(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
