package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/tui"
)

type shortcutView struct {
	Key         string `json:"key"`
	Display     string `json:"display"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type shortcutGroup struct {
	ID        chord.Category `json:"id"`
	Label     string         `json:"label"`
	Shortcuts []shortcutView `json:"shortcuts"`
}

func newShortcutsCommand(opts *rootOptions) *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "shortcuts",
		Short: "List keyboard shortcuts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			sc := cfg.Shortcuts
			if platform == "" {
				platform = sc.Platform
			}
			d := chord.New(chord.NewFeed(), chord.Options{
				LeaderKey:     sc.LeaderKey,
				LeaderTimeout: sc.LeaderTimeout,
				SequenceKeys:  sc.SequenceKeys,
				AlwaysOn:      sc.AlwaysOn,
				Platform:      platform,
				Logger:        log.Discard(),
			})
			defer d.Close()
			d.RegisterMultiple(tui.ShortcutCatalog())

			var groups []shortcutGroup
			for _, g := range d.ByCategory() {
				sg := shortcutGroup{ID: g.ID, Label: g.Label}
				for _, b := range g.Bindings {
					sg.Shortcuts = append(sg.Shortcuts, shortcutView{
						Key: b.Key, Display: d.FormatKey(b.Key), Label: b.Label, Description: b.Description,
					})
				}
				groups = append(groups, sg)
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), groups)
			}
			tw := newTable(cmd.OutOrStdout())
			for _, g := range groups {
				fmt.Fprintf(tw, "%s\n", g.Label)
				for _, s := range g.Shortcuts {
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Display, s.Label, s.Description)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "render modifiers for this platform (darwin shows ⌘)")
	return cmd
}
