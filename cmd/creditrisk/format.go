package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"creditrisk/internal/prompt"
)

func newFormatCmd(root *rootOptions) *cobra.Command {
	var (
		rf          recordFlags
		instruction bool
	)
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Print the formatted borrower record without running a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rf.record(cmd)
			if err != nil {
				return err
			}
			formatted := prompt.Format(rec)
			if instruction {
				_, err = fmt.Fprint(cmd.OutOrStdout(), prompt.Instruction(formatted))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatted)
			return err
		},
	}
	rf.bind(cmd)
	cmd.Flags().BoolVar(&instruction, "instruction", false, "Print the full instruction sent to the models")
	return cmd
}
