package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShabiDHM/advocatus-sub001/application/drafting"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/application/workspace"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/raster"
)

// importFile is the extraction output accepted by the import command
type importFile struct {
	Nodes []services.ImportedNode `json:"nodes"`
	Edges []services.ImportedEdge `json:"edges"`
}

func newShowCmd(a *app) *cobra.Command {
	var (
		opts   services.ViewOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show <case-id>",
		Short: "Print the displayed view of a case's evidence map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openCase(cmd, a, args[0])
			if err != nil {
				return err
			}

			view := ws.Displayed(opts)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return printView(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().BoolVar(&opts.Filters.HideUnconnected, "hide-unconnected", false, "Hide evidence with no relationships")
	cmd.Flags().BoolVar(&opts.Filters.HighlightContradictions, "highlight-contradictions", false, "Animate contradicting relationships")
	cmd.Flags().StringVarP(&opts.SearchTerm, "search", "q", "", "Highlight nodes whose label contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var dangling string

	cmd := &cobra.Command{
		Use:   "import <case-id> <file>",
		Short: "Merge extracted entities into a case's evidence map and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			var in importFile
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("failed to parse import file: %w", err)
			}

			if dangling != "" {
				a.cfg.ImportDanglingPolicy = dangling
			}
			ws, err := openCaseStrict(cmd, a, args[0])
			if err != nil {
				return err
			}

			result, err := ws.Import(in.Nodes, in.Edges)
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), result)

			if len(result.AddedNodes) == 0 && len(result.AddedEdges) == 0 {
				return nil
			}
			if err := ws.Save(cmd.Context()); err != nil {
				return fmt.Errorf("failed to save evidence map: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&dangling, "dangling", "", "Dangling edge policy: keep, drop or redirect")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "report <case-id>",
		Short: "Download the PDF report of a case's evidence map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openCaseStrict(cmd, a, args[0])
			if err != nil {
				return err
			}
			export, err := ws.ExportReport(cmd.Context())
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), outDir, export)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory to write the report to")
	return cmd
}

func newImageCmd(a *app) *cobra.Command {
	var (
		outDir string
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "image <case-id>",
		Short: "Render a case's evidence map to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openCaseStrict(cmd, a, args[0])
			if err != nil {
				return err
			}
			rasterizer := raster.NewPNGRasterizer(nil, scale, a.logger)
			export, err := ws.ExportImage(cmd.Context(), rasterizer, time.Now())
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), outDir, export)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory to write the image to")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Pixels per canvas unit")
	return cmd
}

func newDraftWaitCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "draft-wait <job-id>",
		Short: "Poll a drafting job until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			poller := drafting.NewPoller(a.gateway, drafting.Config{
				Interval: a.cfg.DraftPollInterval,
				OnUpdate: func(s ports.JobStatus) {
					fmt.Fprintf(out, "%s: %s\n", args[0], drafting.ParseJobState(s.Status))
				},
			}, a.logger)

			status, err := poller.Wait(ctx, args[0])
			if err != nil {
				return err
			}
			if status.Result != "" {
				fmt.Fprintln(out, status.Result)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits until the job ends)")
	return cmd
}

// openCase loads a case. A failed load leaves the workspace empty and is
// reported as a warning only.
func openCase(cmd *cobra.Command, a *app, rawID string) (*workspace.Workspace, error) {
	caseID, err := valueobjects.ParseCaseID(rawID)
	if err != nil {
		return nil, err
	}
	ws, err := a.workspace()
	if err != nil {
		return nil, err
	}
	if err := ws.Load(cmd.Context(), caseID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not load evidence map, starting empty: %v\n", err)
	}
	return ws, nil
}

// openCaseStrict loads a case and fails when it cannot be fetched
func openCaseStrict(cmd *cobra.Command, a *app, rawID string) (*workspace.Workspace, error) {
	caseID, err := valueobjects.ParseCaseID(rawID)
	if err != nil {
		return nil, err
	}
	ws, err := a.workspace()
	if err != nil {
		return nil, err
	}
	if err := ws.Load(cmd.Context(), caseID); err != nil {
		return nil, fmt.Errorf("failed to load evidence map: %w", err)
	}
	return ws, nil
}

func writeExport(out io.Writer, dir string, export workspace.Export) error {
	path := filepath.Join(dir, export.FileName)
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Wrote %s (%d bytes)\n", path, len(export.Data))
	return nil
}

func printView(out io.Writer, view services.DisplayedView) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tLABEL\tSUPPORTS\tCONTRADICTS\t")
	for _, n := range view.Nodes {
		supports, contradicts := "-", "-"
		if n.UI.Stats != nil {
			supports = fmt.Sprint(n.UI.Stats.Supports)
			contradicts = fmt.Sprint(n.UI.Stats.Contradicts)
		}
		label := n.Node.Label()
		if n.UI.IsHighlighted {
			label = "* " + label
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", n.Node.ID(), n.Node.Kind().DisplayName(), label, supports, contradicts)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d nodes, %d relationships\n", len(view.Nodes), len(view.Edges))
	return err
}

func printImport(out io.Writer, r services.ImportResult) {
	fmt.Fprintf(out, "Added %d nodes and %d relationships, skipped %d nodes\n",
		len(r.AddedNodes), len(r.AddedEdges), len(r.Skipped))
	for _, s := range r.Skipped {
		line := fmt.Sprintf("  skipped %q (%s)", s.Node.Name, s.Reason)
		if !s.ExistingID.IsZero() {
			line += " matches " + s.ExistingID.String()
		}
		fmt.Fprintln(out, line)
	}
	if len(r.Dangling) > 0 {
		fmt.Fprintf(out, "%d relationships point outside the map\n", len(r.Dangling))
	}
	if r.Redirected > 0 {
		fmt.Fprintf(out, "%d relationships redirected to existing nodes\n", r.Redirected)
	}
}
