package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the submissions table and its indexes",
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

			n, err := st.Count(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("Schema is up to date", map[string]interface{}{
				"driver":      cfg.Database.Driver,
				"submissions": n,
			})
			return nil
		},
	}
}
