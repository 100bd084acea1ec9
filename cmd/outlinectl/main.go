// Package main provides the outlinectl CLI entry point: a demo harness
// built on top of pkg/outline, illustrating the library's operations but
// not itself part of its public contract (spec.md §6).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dcoales/Thortiq-sub001/pkg/breadcrumb"
	"github.com/dcoales/Thortiq-sub001/pkg/config"
	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/outline"
	"github.com/dcoales/Thortiq-sub001/pkg/paneview"
	"github.com/dcoales/Thortiq-sub001/pkg/search"
	"github.com/dcoales/Thortiq-sub001/pkg/snapshot"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "outlinectl",
		Short: "outlinectl - demo harness for the Thortiq outline core",
		Long: `outlinectl drives the outline core library through a small
scripted document: it builds nodes and edges, applies a mirror, runs a
search, and prints the resulting pane rows. It is a demo, not a server.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("outlinectl v%s (%s)\n", version, commit)
		},
	})

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a sample outline and print its pane rows and a sample search",
		RunE:  runDemo,
	}
	rootCmd.AddCommand(demoCmd)

	validateCmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Load and validate a pkg/config.Config document",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	fmt.Printf("📐 Running outlinectl demo (run id %s)\n", uuid.New().String())
	fmt.Printf("   search fields: %s\n\n", strings.Join(cfg.Search.Fields, ", "))

	doc := outline.NewDoc()
	doc.SetDocumentConfig(cfg.Document)

	_, launchNodeID, err := addEdge(doc, outline.AddEdgeOptions{Text: "Launch"})
	if err != nil {
		return err
	}
	_, planNodeID, err := addEdge(doc, outline.AddEdgeOptions{ParentNodeID: &launchNodeID, Text: "Plan the launch"})
	if err != nil {
		return err
	}
	prepEdgeID, prepNodeID, err := addEdge(doc, outline.AddEdgeOptions{ParentNodeID: &planNodeID, Text: "Prep checklist"})
	if err != nil {
		return err
	}
	_, _, err = addEdge(doc, outline.AddEdgeOptions{ParentNodeID: &prepNodeID, Text: "Book the venue"})
	if err != nil {
		return err
	}
	_, otherNodeID, err := addEdge(doc, outline.AddEdgeOptions{Text: "Reference material"})
	if err != nil {
		return err
	}

	_, err = outline.WithTransaction(doc, "local", func(tx *outline.Tx) (struct{}, error) {
		if _, err := tx.UpsertTag(outline.UpsertTagOptions{Label: "urgent", Trigger: '#'}); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, tx.ToggleCollapsed(prepEdgeID, nil)
	})
	if err != nil {
		return fmt.Errorf("seed tags and collapse: %w", err)
	}

	_, err = outline.WithTransaction(doc, "local", func(tx *outline.Tx) (struct{}, error) {
		_, err := tx.CreateMirror(outline.CreateMirrorOptions{MirrorNodeID: otherNodeID, InsertParentNodeID: &launchNodeID})
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("create mirror: %w", err)
	}

	snap := snapshot.CreateOutlineSnapshot(doc)
	result := paneview.BuildPaneRows(snap, paneview.PaneState{})

	fmt.Println("Pane rows:")
	for _, row := range result.Rows {
		indent := strings.Repeat("  ", row.Depth)
		marker := "-"
		if row.Collapsed {
			marker = "+"
		}
		fmt.Printf("%s%s %s\n", indent, marker, row.Text)
	}
	fmt.Println()

	exec := search.RunSearch(snap, "launch", nil, cfg.Search.Fields)
	fmt.Printf("Search %q: %d matched, %d visible, %d partial\n",
		exec.Query, len(exec.MatchedEdgeIDs), len(exec.VisibleEdgeIDs), len(exec.PartiallyVisibleEdgeIds))

	plan := breadcrumb.PlanBreadcrumbVisibility([]int{80, 200, 200, 200, 150}, 400, 20)
	fmt.Printf("Breadcrumb plan: fits=%v collapsed=%v\n", plan.FitsWithinWidth, plan.CollapsedRanges)

	return nil
}

// addEdge wraps the single-call WithTransaction + AddEdge pattern used
// repeatedly while scripting the demo document.
func addEdge(doc *outline.Doc, opts outline.AddEdgeOptions) (ids.EdgeID, ids.NodeID, error) {
	type result struct {
		edge ids.EdgeID
		node ids.NodeID
	}
	r, err := outline.WithTransaction(doc, "local", func(tx *outline.Tx) (result, error) {
		e, n, err := tx.AddEdge(opts)
		return result{edge: e, node: n}, err
	})
	return r.edge, r.node, err
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := config.LoadFromYAML(data)
	if err != nil {
		fmt.Printf("❌ invalid config: %v\n", err)
		return err
	}

	fmt.Printf("✅ %s is valid\n", path)
	fmt.Printf("   max heading level: %d\n", cfg.Document.MaxHeadingLevel)
	fmt.Printf("   search fields:     %s\n", strings.Join(cfg.Search.Fields, ", "))
	fmt.Printf("   default layout:    %s\n", cfg.View.DefaultLayout)
	return nil
}
