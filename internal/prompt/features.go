package prompt

import (
	"math"
	"strconv"
	"strings"
)

// ParseFeatures reads a record from the pipe-separated feature notation used
// by the dataset tooling, e.g.
//
//	Age: 32 | Occupation: Journalist | Annual_Income: 33470.43 | ...
//
// Missing keys fall back to zero values (Occupation and payment behaviour to
// "Unknown"); the resulting record is validated before it is returned.
func ParseFeatures(s string) (CreditRecord, error) {
	feat := splitFeatures(s)
	rec := CreditRecord{
		Occupation:      valueOr(feat, "Unknown", "Occupation"),
		PaymentBehavior: valueOr(feat, "Unknown", "Payment_Behaviour", "Payment_Behavior"),
	}
	if v, ok := feat["Age"]; ok {
		// Ages sometimes arrive as "32.0" in exported rows.
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return CreditRecord{}, formattingErrorf("age", "not a number: %q", v)
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return CreditRecord{}, formattingErrorf("age", "not a whole number: %q", v)
		}
		rec.Age = int(f)
	}
	var err error
	if rec.AnnualIncome, err = parseDecimal(feat, "Annual_Income", "annual_income"); err != nil {
		return CreditRecord{}, err
	}
	if rec.OutstandingDebt, err = parseDecimal(feat, "Outstanding_Debt", "outstanding_debt"); err != nil {
		return CreditRecord{}, err
	}
	if rec.CreditUtilization, err = parseDecimal(feat, "Credit_Utilization_Ratio", "credit_utilization"); err != nil {
		return CreditRecord{}, err
	}
	if err := Validate(rec); err != nil {
		return CreditRecord{}, err
	}
	return rec, nil
}

func splitFeatures(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func valueOr(feat map[string]string, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := feat[k]; ok && v != "" {
			return v
		}
	}
	return def
}

func parseDecimal(feat map[string]string, key, field string) (float64, error) {
	v, ok := feat[key]
	if !ok {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, formattingErrorf(field, "not a number: %q", v)
	}
	return f, nil
}
