package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/store"
)

func newActivityCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage the activity feed",
	}
	cmd.AddCommand(newActivityAddCommand(opts))
	cmd.AddCommand(newActivityListCommand(opts))
	cmd.AddCommand(newActivityReadCommand(opts))
	cmd.AddCommand(newActivityReadAllCommand(opts))
	cmd.AddCommand(newActivityClearCommand(opts))
	return cmd
}

func newActivityAddCommand(opts *rootOptions) *cobra.Command {
	var (
		typ, category, description string
		actorID, actorName, role   string
		important                  bool
		metadata                   map[string]string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := activity.Type(typ)
			if !slices.Contains(activity.Types, t) {
				return fmt.Errorf("unknown activity type %q", typ)
			}
			c := activity.Category(category)
			if !slices.Contains(activity.Categories, c) {
				return fmt.Errorf("unknown category %q", category)
			}

			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			var md activity.Metadata
			if len(metadata) > 0 {
				md = make(activity.Metadata, len(metadata))
				for k, v := range metadata {
					md[k] = v
				}
			}
			if actorID == "" {
				actorID = "user-" + strings.ToLower(strings.ReplaceAll(actorName, " ", "-"))
			}
			added := a.activity.AddActivity(t, c, args[0],
				activity.Actor{ID: actorID, Name: actorName, Role: role},
				md, activity.Options{Description: description, IsImportant: important})

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), added)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", added.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(activity.TypeCommentAdded), "activity type")
	cmd.Flags().StringVar(&category, "category", string(activity.CategoryCollaboration), "activity category")
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&actorName, "actor", "System", "actor display name")
	cmd.Flags().StringVar(&actorID, "actor-id", "", "actor id (default derived from --actor)")
	cmd.Flags().StringVar(&role, "role", "", "actor role")
	cmd.Flags().BoolVar(&important, "important", false, "flag as important")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "metadata key=value pairs")
	return cmd
}

func newActivityListCommand(opts *rootOptions) *cobra.Command {
	var (
		categories, types, actors []string
		unread, grouped          bool
		query                    string
		since                    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			f := &activity.Filter{ActorIDs: actors, UnreadOnly: unread, Text: query}
			for _, c := range categories {
				f.Categories = append(f.Categories, activity.Category(c))
			}
			for _, t := range types {
				f.Types = append(f.Types, activity.Type(t))
			}
			if since > 0 {
				now := time.Now()
				f.DateRange = &activity.DateRange{Start: now.Add(-since), End: now}
			}

			out := cmd.OutOrStdout()
			if grouped {
				groups := a.activity.Grouped(f)
				if opts.JSON {
					return printJSON(out, groups)
				}
				return printActivityGroups(cmd, groups)
			}

			items := a.activity.Activities(f)
			if opts.JSON {
				return printJSON(out, items)
			}
			return printActivityGroups(cmd, []store.Group[activity.Activity]{{Items: items}})
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only these categories")
	cmd.Flags().StringSliceVar(&types, "type", nil, "only these types")
	cmd.Flags().StringSliceVar(&actors, "actor-id", nil, "only these actors")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread activities")
	cmd.Flags().StringVarP(&query, "query", "q", "", "text search over title, description and actor")
	cmd.Flags().DurationVar(&since, "since", 0, "only activities newer than this")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group by day")
	return cmd
}

func printActivityGroups(cmd *cobra.Command, groups []store.Group[activity.Activity]) error {
	tw := newTable(cmd.OutOrStdout())
	now := time.Now()
	empty := true
	for _, g := range groups {
		if g.Label != "" {
			fmt.Fprintf(tw, "%s\n", g.Label)
		}
		for _, it := range g.Items {
			empty = false
			mark := " "
			if !it.IsRead {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				mark, it.ID, activity.CategoryLabel(it.Category), it.Title, it.Actor.Name, store.TimeAgo(it.Timestamp, now))
		}
	}
	if empty {
		fmt.Fprintln(tw, "No activities.")
	}
	return tw.Flush()
}

func newActivityReadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one activity as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := findActivity(a.activity, args[0]); !ok {
				return fmt.Errorf("activity %q not found", args[0])
			}
			a.activity.MarkAsRead(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", a.activity.UnreadCount())
			return nil
		},
	}
}

func findActivity(s *activity.Store, id string) (activity.Activity, bool) {
	for _, it := range s.Activities(nil) {
		if it.ID == id {
			return it, true
		}
	}
	return activity.Activity{}, false
}

func newActivityReadAllCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every activity as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			a.activity.MarkAllAsRead()
			fmt.Fprintln(cmd.OutOrStdout(), "0 unread")
			return nil
		},
	}
}

func newActivityClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			a.activity.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Activity feed cleared")
			return nil
		},
	}
}
