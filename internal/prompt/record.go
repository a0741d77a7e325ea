// Package prompt turns applicant records into the natural-language input the
// credit-risk models were fine-tuned on, and reads their answers back.
package prompt

import (
	"math"
	"strings"
)

// CreditRecord is the structured applicant profile submitted for assessment.
type CreditRecord struct {
	Age               int     `json:"age" yaml:"age"`
	Occupation        string  `json:"occupation" yaml:"occupation"`
	AnnualIncome      float64 `json:"annual_income" yaml:"annual_income"`
	OutstandingDebt   float64 `json:"outstanding_debt" yaml:"outstanding_debt"`
	CreditUtilization float64 `json:"credit_utilization" yaml:"credit_utilization"`
	PaymentBehavior   string  `json:"payment_behavior" yaml:"payment_behavior"`
}

// Accepted ranges for record fields.
const (
	MinAge            = 18
	MaxAge            = 100
	MaxUtilizationPct = 100.0
)

// PaymentBehaviors lists the payment behaviour categories present in the
// training data, in the order the UI offers them.
var PaymentBehaviors = []string{
	"Low_spent_Small_value_payments",
	"High_spent_Medium_value_payments",
	"Low_spent_Medium_value_payments",
	"Low_spent_Large_value_payments",
	"High_spent_Large_value_payments",
	"High_spent_Small_value_payments",
}

// ExampleRecord returns the reference applicant used by the CLI defaults and docs.
func ExampleRecord() CreditRecord {
	return CreditRecord{
		Age:               32,
		Occupation:        "Journalist",
		AnnualIncome:      33470.43,
		OutstandingDebt:   1318.49,
		CreditUtilization: 26.8,
		PaymentBehavior:   "Low_spent_Large_value_payments",
	}
}

// IsKnownPaymentBehavior reports whether b is one of PaymentBehaviors.
func IsKnownPaymentBehavior(b string) bool {
	for _, pb := range PaymentBehaviors {
		if pb == b {
			return true
		}
	}
	return false
}

// Validate rejects records that cannot be formatted into a meaningful prompt.
// The returned error is a *FormattingError.
func Validate(rec CreditRecord) error {
	if rec.Age < MinAge || rec.Age > MaxAge {
		return formattingErrorf("age", "must be between %d and %d, got %d", MinAge, MaxAge, rec.Age)
	}
	if strings.TrimSpace(rec.Occupation) == "" {
		return formattingErrorf("occupation", "is required")
	}
	if err := checkAmount("annual_income", rec.AnnualIncome); err != nil {
		return err
	}
	if err := checkAmount("outstanding_debt", rec.OutstandingDebt); err != nil {
		return err
	}
	if err := checkAmount("credit_utilization", rec.CreditUtilization); err != nil {
		return err
	}
	if rec.CreditUtilization > MaxUtilizationPct {
		return formattingErrorf("credit_utilization", "must not exceed %.0f, got %v", MaxUtilizationPct, rec.CreditUtilization)
	}
	if !IsKnownPaymentBehavior(rec.PaymentBehavior) {
		return formattingErrorf("payment_behavior", "unknown value %q", rec.PaymentBehavior)
	}
	return nil
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formattingErrorf(field, "must be a finite number")
	}
	if v < 0 {
		return formattingErrorf(field, "must not be negative, got %v", v)
	}
	return nil
}
