package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/Alhassan777/arbor/pkg/config"
	"github.com/Alhassan777/arbor/pkg/layout"
	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/render"
	"github.com/Alhassan777/arbor/pkg/source"
	"github.com/Alhassan777/arbor/pkg/store"
	"github.com/Alhassan777/arbor/pkg/tree"
	"github.com/Alhassan777/arbor/pkg/ui"
	"github.com/Alhassan777/arbor/pkg/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to arbor.yaml (default: ./arbor.yaml)")
	treeName := flag.String("tree", "", "Name of the tree to open (default: most recent)")
	newTree := flag.Bool("new", false, "Create a new tree")
	list := flag.Bool("list", false, "List stored trees and exit")
	exportPath := flag.String("export", "", "Render the tree to the given .svg/.png file and exit")
	session := flag.String("session", "", "Chat-session export file to sync from (overrides config)")
	help := flag.Bool("help", false, "Show help")
	version := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: arbor [options]")
		fmt.Println("\nOrganize branching chat conversations into labeled trees.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *version {
		fmt.Println("arbor version 0.1.0")
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *session != "" {
		cfg.SessionPath = *session
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		fatal(fmt.Errorf("open store: %w", err))
	}
	defer db.Close()

	if *list {
		listTrees(db)
		return
	}

	t, err := pickTree(db, *treeName, *newTree)
	if err != nil {
		fatal(err)
	}

	flusher := store.NewFlusher(db, store.WithFlushInterval(cfg.FlushInterval))
	defer flusher.Close()

	mutator := tree.NewMutator(t, tree.WithJournal(flusher))
	engine := layout.NewEngine(cfg.Layout)
	coordinator := render.NewCoordinator(mutator, engine, cfg.RenderDebounce)
	defer coordinator.Close()

	if *exportPath != "" {
		err := render.SaveSnapshot(render.SnapshotOptions{
			Path:  *exportPath,
			Scene: coordinator.Scene(),
		})
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Wrote %s\n", *exportPath)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatal(fmt.Errorf("arbor needs a terminal; use -export for headless rendering"))
	}

	var adapter source.Adapter
	if cfg.SessionPath != "" {
		adapter = source.NewFileAdapter(cfg.SessionPath)
	}

	m := ui.NewModel(mutator, coordinator, adapter, exportBase(t.Name))
	p := tea.NewProgram(m, tea.WithAltScreen())

	coordinator.AddSink(func(scene render.Scene) {
		p.Send(ui.SceneMsg{Scene: scene})
	})

	var sw *watcher.SessionWatcher
	if cfg.SessionPath != "" {
		sw, err = watcher.NewSessionWatcher(cfg.SessionPath, 0, func() {
			p.Send(ui.SessionChangedMsg{})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: session watching disabled: %v\n", err)
		} else {
			defer sw.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fatal(fmt.Errorf("run browser: %w", err))
	}
}

// pickTree loads the requested tree, asks for a name when creating a new
// one, and falls back to the most recently updated tree.
func pickTree(db *store.Store, name string, create bool) (*model.Tree, error) {
	if create {
		if name == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Tree name").
					Placeholder("My research").
					Value(&name),
			))
			if err := form.Run(); err != nil {
				return nil, fmt.Errorf("read tree name: %w", err)
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("a new tree needs a name")
		}
		t := tree.NewTree(name)
		if err := db.PutTree(t); err != nil {
			return nil, fmt.Errorf("save new tree: %w", err)
		}
		return t, nil
	}

	infos, err := db.ListTrees()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("no trees yet; create one with 'arbor -new'")
	}

	id := infos[0].ID // most recently updated
	if name != "" {
		id = ""
		for _, info := range infos {
			if info.Name == name || info.ID == name {
				id = info.ID
				break
			}
		}
		if id == "" {
			return nil, fmt.Errorf("no tree named %q; try 'arbor -list'", name)
		}
	}
	return db.GetTree(id)
}

func listTrees(db *store.Store) {
	infos, err := db.ListTrees()
	if err != nil {
		fatal(err)
	}
	if len(infos) == 0 {
		fmt.Println("No trees yet. Create one with 'arbor -new'.")
		return
	}
	for _, info := range infos {
		fmt.Printf("%-36s  %-24s  %4d nodes  %s\n",
			info.ID, info.Name, info.NodeCount, info.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func exportBase(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
	if base == "" {
		base = "arbor"
	}
	return base
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
