package main

import (
	"github.com/spf13/cobra"

	"creditrisk/internal/prompt"
)

// recordFlags binds a borrower record to command flags. --features takes
// the "Key: value | Key: value" form; individual flags override it.
type recordFlags struct {
	features string
	rec      prompt.CreditRecord
}

func (rf *recordFlags) bind(cmd *cobra.Command) {
	ex := prompt.ExampleRecord()
	rf.rec = ex
	f := cmd.Flags()
	f.StringVar(&rf.features, "features", "", `Record as "Age: 32 | Occupation: Journalist | Annual_Income: ..."`)
	f.IntVar(&rf.rec.Age, "age", ex.Age, "Borrower age (18-100)")
	f.StringVar(&rf.rec.Occupation, "occupation", ex.Occupation, "Occupation")
	f.Float64Var(&rf.rec.AnnualIncome, "annual-income", ex.AnnualIncome, "Annual income")
	f.Float64Var(&rf.rec.OutstandingDebt, "outstanding-debt", ex.OutstandingDebt, "Outstanding debt")
	f.Float64Var(&rf.rec.CreditUtilization, "credit-utilization", ex.CreditUtilization, "Credit utilization ratio in percent")
	f.StringVar(&rf.rec.PaymentBehavior, "payment-behavior", ex.PaymentBehavior, "Payment behaviour category")
}

// record returns the validated record described by the flags.
func (rf *recordFlags) record(cmd *cobra.Command) (prompt.CreditRecord, error) {
	rec := rf.rec
	if rf.features != "" {
		parsed, err := prompt.ParseFeatures(rf.features)
		if err != nil {
			return prompt.CreditRecord{}, err
		}
		f := cmd.Flags()
		if !f.Changed("age") {
			rec.Age = parsed.Age
		}
		if !f.Changed("occupation") {
			rec.Occupation = parsed.Occupation
		}
		if !f.Changed("annual-income") {
			rec.AnnualIncome = parsed.AnnualIncome
		}
		if !f.Changed("outstanding-debt") {
			rec.OutstandingDebt = parsed.OutstandingDebt
		}
		if !f.Changed("credit-utilization") {
			rec.CreditUtilization = parsed.CreditUtilization
		}
		if !f.Changed("payment-behavior") {
			rec.PaymentBehavior = parsed.PaymentBehavior
		}
	}
	if err := prompt.Validate(rec); err != nil {
		return prompt.CreditRecord{}, err
	}
	return rec, nil
}
