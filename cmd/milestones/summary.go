package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/milestones/internal/store"
	"github.com/tgienger/milestones/internal/ui/styles"
)

func newSummaryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print completion and overdue counts per project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(*flags)
			if err != nil {
				return err
			}
			defer sess.Close()
			return writeSummary(cmd.OutOrStdout(), sess.store, time.Now())
		},
	}
}

func writeSummary(w io.Writer, st *store.Store, now time.Time) error {
	projects := st.Projects()
	if len(projects) == 0 {
		_, err := fmt.Fprintln(w, "No projects.")
		return err
	}

	s := styles.NewStyles()
	cell := lipgloss.NewStyle().Padding(0, 1)
	header := cell.Inherit(s.Title)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Current.Border)).
		Headers("PROJECT", "MILESTONES", "DONE", "OVERDUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, p := range projects {
		stats := st.ProjectStats(p.ID, now)
		t.Row(p.Name, strconv.Itoa(stats.Total), fmt.Sprintf("%d%%", stats.Completion), strconv.Itoa(stats.Overdue))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
