package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/registry"
)

func newBackendsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List configured backends and whether their model files exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := registry.Resolve(root.cfg)
			if err != nil {
				return err
			}
			missing := map[string]bool{}
			for _, n := range registry.Missing(cfg) {
				missing[n] = true
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, color.CyanString("NAME\tKIND\tPRESET\tMODEL\tSTATUS"))
			for _, b := range cfg.Backends {
				model, status := b.Model, color.GreenString("found")
				switch {
				case b.Kind == config.KindLlamaServer:
					model, status = b.BaseURL, color.YellowString("remote")
				case b.Disabled:
					status = color.YellowString("disabled")
				case missing[b.Name]:
					status = color.RedString("missing")
				case !backend.LlamaBuilt():
					status = color.YellowString("found (built without -tags=llama)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.Name, b.Kind, b.Preset, model, status)
			}
			return w.Flush()
		},
	}
}
