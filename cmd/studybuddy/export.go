package main

import (
	"fmt"
	"io"
	"os"

	"studybuddy/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every submission as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			db, st, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			subs, err := st.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := export.WriteCSV(w, subs); err != nil {
				return err
			}
			log.Info("Export written", map[string]interface{}{"rows": len(subs), "out": out})
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "students.csv", `output file, "-" for stdout`)
	return cmd
}
