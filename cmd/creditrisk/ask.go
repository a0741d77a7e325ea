package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/httpapi"
	"creditrisk/internal/manager"
	"creditrisk/internal/present"
	"creditrisk/internal/prompt"
	"creditrisk/internal/registry"
)

type askOptions struct {
	record  recordFlags
	jsonOut bool
	noColor bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [backend...]",
		Short: "Assess one borrower with the named backends (all when none given)",
		Example: "  creditrisk ask qlora --age 45 --occupation Engineer\n" +
			"  creditrisk ask --workers 1 --features \"Age: 32 | Occupation: Journalist | Annual_Income: 33470.43 | Outstanding_Debt: 1318.49 | Credit_Utilization_Ratio: 26.8 | Payment_Behaviour: Low_spent_Large_value_payments\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.record.record(cmd)
			if err != nil {
				return err
			}
			cfg, err := registry.Resolve(root.cfg)
			if err != nil {
				return err
			}
			for _, n := range args {
				if _, ok := cfg.Backend(n); !ok {
					return manager.ErrBackendNotFound(n)
				}
			}
			mgr := manager.New(manager.Options{Config: cfg, Logger: root.log})
			defer mgr.Close()
			if err := mgr.Load(cmd.Context()); err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = cfg.BackendNames()
			}
			return runAsk(cmd.Context(), cmd.OutOrStdout(), mgr, names, rec, opts)
		},
	}
	opts.record.bind(cmd)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the joined result as JSON instead of streaming")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func runAsk(ctx context.Context, out io.Writer, mgr *manager.Manager, names []string, rec prompt.CreditRecord, opts *askOptions) error {
	if opts.jsonOut {
		res, err := mgr.DispatchAll(ctx, names, rec, nil)
		if err != nil && res.Results == nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(httpapi.ToParallelResponse(res)); encErr != nil {
			return encErr
		}
		return err
	}

	term := present.NewTerminal(out, names, present.Options{NoColor: opts.noColor})
	if len(names) == 1 {
		res, err := mgr.Ask(ctx, names[0], rec, func(text string) { term.Partial(names[0], text) })
		if err != nil {
			return err
		}
		term.Flush(names[0])
		term.Result(res)
		if !res.OK() {
			return fmt.Errorf("%s: %s", res.Backend, res.Status)
		}
		return nil
	}

	heading := color.New(color.FgHiBlack)
	if opts.noColor {
		heading.DisableColor()
	}
	heading.Fprintf(out, "asking %d backends\n", len(names))
	res, err := mgr.Observe(ctx, names, rec, dispatch.Observer{
		Partial: term.Partial,
		Done:    func(r backend.InferenceResult) { term.Flush(r.Backend) },
	})
	if err != nil && res.Results == nil {
		return err
	}
	term.Summary(res)
	return err
}
