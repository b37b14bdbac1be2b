package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aretw0/introspection"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

var (
	statusJSON    bool
	statusDiagram bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dictionary, storage and sync state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		inst, err := openDictionary()
		if err != nil {
			fatal("Failed to open dictionary", err)
		}
		ctx := cmd.Context()
		if err := inst.Service.Load(ctx); err != nil {
			fatal("Failed to load dictionary", err)
		}

		components := []introspection.Introspectable{inst.Service}
		if intro, ok := inst.Repository.(introspection.Introspectable); ok {
			components = append(components, intro)
		}
		if inst.Engine != nil {
			components = append(components, inst.Engine)
		}

		var meta *core.SyncMetadata
		if inst.Engine != nil {
			m, err := inst.Engine.Metadata(ctx)
			if err != nil {
				fatal("Failed to read sync metadata", err)
			}
			meta = &m
		}

		out := cmd.OutOrStdout()
		switch {
		case statusJSON:
			states := make(map[string]any, len(components)+1)
			for _, c := range components {
				states[componentName(c)] = c.State()
			}
			if meta != nil {
				states["sync_metadata"] = meta
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(states); err != nil {
				fatal("Error encoding JSON", err)
			}
		case statusDiagram:
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "dictionary"
			config.SecondaryLabel = "Dictionary Topology"
			fmt.Fprintln(out, introspection.TreeDiagram(buildTree(inst.Home, components), config))
		default:
			printStatus(out, inst.Home, components, meta)
		}
	},
}

func componentName(c introspection.Introspectable) string {
	if comp, ok := c.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fmt.Sprintf("%T", c)
}

func printStatus(w io.Writer, home string, components []introspection.Introspectable, meta *core.SyncMetadata) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
	}

	row("Home", home)
	for _, c := range components {
		switch s := c.State().(type) {
		case core.ServiceState:
			row("Definitions", fmt.Sprintf("%s across %s terms", humanize.Comma(int64(s.Entries)), humanize.Comma(int64(s.Terms))))
			row("Removed", humanize.Comma(int64(s.Removed)))
			if s.ReadOnly {
				row("Mode", warnStyle.Render("read-only"))
			}
		case fs.RepositoryState:
			row("Files", fmt.Sprintf("snapshot %d, added %d, removed %d", s.Records.Base, s.Records.Added, s.Records.Removed))
		case remote.EngineState:
			row("Source", fmt.Sprintf("%s@%s:%s", s.Repo, s.Branch, s.Path))
			row("Policies", fmt.Sprintf("delete=%s add=%s", s.DeletePolicy, s.AddPolicy))
		}
	}

	if meta == nil {
		row("Sync", dimStyle.Render("disabled"))
		return
	}
	last := "never"
	if !meta.LastSync.IsZero() {
		last = humanize.Time(meta.LastSync)
	}
	version := meta.LastVersion
	if version == "" {
		version = "none"
	}
	row("Last sync", fmt.Sprintf("%s (version %s)", last, shortVersion(version)))
	auto := fmt.Sprintf("%s, every %s", onOff(meta.AutoSync), meta.SyncInterval)
	if meta.AutoSync {
		if next := meta.LastSync.Add(meta.SyncInterval); next.After(time.Now()) {
			auto += ", next " + humanize.Time(next)
		} else {
			auto += ", due now"
		}
	}
	row("Auto sync", auto)
}

type dictionaryNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []dictionaryNode
}

// buildTree maps component states onto the node shape expected by
// introspection.TreeDiagram. Status values must match introspection.DefaultStyles().
func buildTree(home string, components []introspection.Introspectable) dictionaryNode {
	root := dictionaryNode{
		Name:     "Dictionary",
		Status:   "running",
		Metadata: map[string]string{"type": "container", "path": home},
	}

	for _, c := range components {
		switch s := c.State().(type) {
		case core.ServiceState:
			root.Children = append(root.Children, dictionaryNode{
				Name:   "Service",
				Status: "running",
				Metadata: map[string]string{
					"type":    "process",
					"entries": strconv.Itoa(s.Entries),
					"removed": strconv.Itoa(s.Removed),
				},
			})
		case fs.RepositoryState:
			watcher := "suspended"
			if s.WatcherActive {
				watcher = "running"
			}
			root.Children = append(root.Children, dictionaryNode{
				Name:     "Repository",
				Status:   "running",
				Metadata: map[string]string{"type": "process", "path": s.Path},
				Children: []dictionaryNode{
					{Name: "Watcher", Status: watcher, Metadata: map[string]string{"type": "goroutine"}},
				},
			})
		case remote.EngineState:
			status := "suspended"
			if s.Status == core.StatusError || s.Status == core.StatusNoNetwork {
				status = "failed"
			}
			root.Children = append(root.Children, dictionaryNode{
				Name:     "Sync Engine",
				Status:   status,
				Metadata: map[string]string{"type": "process", "repo": s.Repo, "status": s.Status.String()},
			})
		}
	}
	return root
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output component states as JSON")
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Output a Mermaid diagram of the components")
}
