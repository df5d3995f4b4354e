package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/engine/planner"
	"go.trai.ch/cplan/internal/ui/style"
)

type planStep struct {
	Priority string   `json:"priority"`
	Target   string   `json:"target"`
	Output   string   `json:"output"`
	Command  string   `json:"command"`
	Needs    []string `json:"needs,omitempty"`
}

type planDocument struct {
	Digest string     `json:"digest"`
	Steps  []planStep `json:"steps"`
}

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ordered command sequence for the root binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, seq, err := c.app.Plan(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writePlanJSON(cmd.OutOrStdout(), seq)
			}
			return writePlanTable(cmd.OutOrStdout(), cfg, seq)
		},
	}
	cmd.Flags().Bool("json", false, "Print the plan as JSON")
	return cmd
}

func writePlanJSON(w io.Writer, seq domain.Sequence) error {
	doc := planDocument{
		Digest: planner.Digest(seq),
		Steps:  make([]planStep, 0, len(seq)),
	}
	for i := range seq {
		s := &seq[i]
		step := planStep{
			Priority: s.Priority.String(),
			Target:   s.Target.String(),
			Output:   s.Output.String(),
			Command:  s.Command,
		}
		for _, need := range s.Needs {
			step.Needs = append(step.Needs, need.String())
		}
		doc.Steps = append(doc.Steps, step)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writePlanTable(w io.Writer, cfg *domain.Config, seq domain.Sequence) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(style.Border).
		Headers("PRIORITY", "TARGET", "OUTPUT", "COMMAND").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return style.Header
			case col == 0:
				return style.Priority
			case col == 3:
				return style.Muted
			default:
				return style.Cell
			}
		})

	for i := range seq {
		s := &seq[i]
		t.Row(s.Priority.String(), s.Target.String(), relative(cfg.Root, s.Output.String()), s.Command)
	}

	_, err := fmt.Fprintf(w, "%s\nplan %s: %d step(s) for %s\n", t.Render(), planner.Digest(seq), len(seq), cfg.Bin.Name)
	return err
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
