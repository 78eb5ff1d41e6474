package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/hearth/internal/recent"
)

func newRecentCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Manage recently visited items",
	}
	cmd.AddCommand(newRecentAddCommand(opts))
	cmd.AddCommand(newRecentListCommand(opts))
	cmd.AddCommand(newRecentRemoveCommand(opts))
	cmd.AddCommand(newRecentClearCommand(opts))
	return cmd
}

func parseRecentType(s string) (recent.Type, error) {
	t := recent.Type(s)
	if !slices.Contains(recent.Types, t) {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

func newRecentAddCommand(opts *rootOptions) *cobra.Command {
	var (
		typ, route, subtitle, status, category string
		progress                               int
	)
	cmd := &cobra.Command{
		Use:   "add <id> <title>",
		Short: "Record a visit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseRecentType(typ)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			it := recent.Item{
				ID:       args[0],
				Type:     t,
				Title:    args[1],
				Subtitle: subtitle,
				Icon:     recent.TypeIcon(t),
				Route:    route,
			}
			if status != "" || category != "" || cmd.Flags().Changed("progress") {
				it.Metadata = &recent.Metadata{Status: status, Category: category}
				if cmd.Flags().Changed("progress") {
					it.Metadata.Progress = &progress
				}
			}
			if it.Route == "" {
				it.Route = "/" + string(t) + "/" + it.ID
			}
			if !a.recent.AddItem(it) {
				return fmt.Errorf("items of type %q are excluded from recent items", t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", it.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(recent.TypePage), "item type")
	cmd.Flags().StringVar(&route, "route", "", "route to open the item (default /<type>/<id>)")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "secondary line")
	cmd.Flags().StringVar(&status, "status", "", "metadata status")
	cmd.Flags().StringVar(&category, "category", "", "metadata category")
	cmd.Flags().IntVar(&progress, "progress", 0, "metadata progress percentage")
	return cmd
}

func newRecentListCommand(opts *rootOptions) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent items grouped by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if typ != "" {
				t, err := parseRecentType(typ)
				if err != nil {
					return err
				}
				items := a.recent.ItemsByType(t)
				if opts.JSON {
					return printJSON(out, items)
				}
				return printRecent(cmd, items, false)
			}

			if opts.JSON {
				return printJSON(out, a.recent.Items())
			}
			var items []recent.Item
			for _, g := range a.recent.GroupedByType() {
				items = append(items, g.Items...)
			}
			return printRecent(cmd, items, true)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only items of this type")
	return cmd
}

func printRecent(cmd *cobra.Command, items []recent.Item, headers bool) error {
	tw := newTable(cmd.OutOrStdout())
	if len(items) == 0 {
		fmt.Fprintln(tw, "No recent items.")
		return tw.Flush()
	}
	now := time.Now()
	var last recent.Type
	for _, it := range items {
		if headers && it.Type != last {
			fmt.Fprintf(tw, "%s\n", recent.TypeLabel(it.Type))
			last = it.Type
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", it.ID, it.Title, it.Route, recent.TimeAgo(it.Timestamp, now))
	}
	return tw.Flush()
}

func newRecentRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Forget one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.recent.RemoveItem(args[0]) {
				return fmt.Errorf("recent item %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newRecentClearCommand(opts *rootOptions) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every item, or every item of one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var t recent.Type
			if typ != "" {
				var err error
				if t, err = parseRecentType(typ); err != nil {
					return err
				}
			}
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if t != "" {
				n := a.recent.ClearByType(t)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s items\n", n, t)
				return nil
			}
			a.recent.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Recent items cleared")
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only clear items of this type")
	return cmd
}
