package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/milestones/internal/models"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all projects and milestones to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(*flags)
			if err != nil {
				return err
			}
			defer sess.Close()
			return writeSnapshot(cmd.OutOrStdout(), sess.store.Snapshot(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

// writeSnapshot encodes snap in the persisted shape
func writeSnapshot(w io.Writer, snap models.Snapshot, format string) error {
	if snap.Projects == nil {
		snap.Projects = []models.Project{}
	}
	if snap.Milestones == nil {
		snap.Milestones = []models.Milestone{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q: want json or yaml", format)
}
