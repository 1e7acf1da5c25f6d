package main

import (
	"fmt"
	"text/tabwriter"

	"studybuddy/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and edit the Zeebe activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "registry JSON file (default: the compiled-in registry)")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check ids, task types and timeouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTASK TYPE\tSTATUS\tTIMEOUT")
			for _, a := range reg.Activities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.TaskType, a.ImplementationStatus, a.Timeout)
			}
			return tw.Flush()
		},
	}

	var id, field, value, out string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change one field of an activity and write the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if err := reg.SetField(id, field, value); err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			target := out
			if target == "" {
				target = path
			}
			if target == "" {
				return fmt.Errorf("--out is required when editing the compiled-in registry")
			}
			if err := registry.Save(reg, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	update.Flags().StringVar(&id, "id", "", "activity id")
	update.Flags().StringVar(&field, "field", "", "status, version, displayName, description, timeout or retries")
	update.Flags().StringVar(&value, "value", "", "new value")
	update.Flags().StringVar(&out, "out", "", "write to this file instead of --path")
	_ = update.MarkFlagRequired("id")
	_ = update.MarkFlagRequired("field")
	_ = update.MarkFlagRequired("value")

	cmd.AddCommand(validate, list, update)
	return cmd
}
