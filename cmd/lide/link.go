package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/model"
)

var linkKindArgs = map[string]model.LinkKind{
	"person-tag":   model.LinkPersonTag,
	"person-entry": model.LinkPersonEntry,
	"entry-tag":    model.LinkEntryTag,
	"media-entry":  model.LinkMediaEntry,
}

type linkFlags struct {
	role      string
	caption   string
	sortOrder int
}

// build turns "<kind> <a> <b>" into a link. Endpoint order follows the kind
// name: person-tag takes a person then a tag, media-entry a media then an entry.
func (f linkFlags) build(cmd *cobra.Command, args []string) (model.Link, error) {
	kind, ok := linkKindArgs[args[0]]
	if !ok {
		return nil, fmt.Errorf("unknown link kind %q", args[0])
	}
	a, b := args[1], args[2]

	switch kind {
	case model.LinkPersonTag:
		return model.PersonTag{PersonID: a, TagID: b}, nil
	case model.LinkPersonEntry:
		return model.PersonEntry{PersonID: a, EntryID: b, Role: f.role}, nil
	case model.LinkEntryTag:
		return model.EntryTag{EntryID: a, TagID: b}, nil
	}

	l := model.MediaEntry{MediaID: a, EntryID: b}
	if cmd.Flags().Changed("caption") {
		caption := f.caption
		l.Caption = &caption
	}
	if cmd.Flags().Changed("sort-order") {
		order := f.sortOrder
		l.SortOrder = &order
	}
	return l, nil
}

func linkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add, remove or re-role links between records",
	}
	cmd.AddCommand(linkAddCmd(a), linkRemoveCmd(a), linkRoleCmd(a))
	return cmd
}

func linkAddCmd(a *app) *cobra.Command {
	var f linkFlags

	cmd := &cobra.Command{
		Use:   "add {person-tag|person-entry|entry-tag|media-entry} <a> <b>",
		Short: "Link two records",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := f.build(cmd, args)
			if err != nil {
				return err
			}
			c, err := a.open()
			if err != nil {
				return err
			}
			created, err := c.Links().Add(cmd.Context(), link)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %s\n", created.NaturalKey())
			return nil
		},
	}

	cmd.Flags().StringVar(&f.role, "role", "", "person-entry role (default "+model.DefaultRole+")")
	cmd.Flags().StringVar(&f.caption, "caption", "", "media-entry caption")
	cmd.Flags().IntVar(&f.sortOrder, "sort-order", 0, "media-entry sort order")
	return cmd
}

func linkRemoveCmd(a *app) *cobra.Command {
	var f linkFlags

	cmd := &cobra.Command{
		Use:   "remove {person-tag|person-entry|entry-tag|media-entry} <a> <b>",
		Short: "Remove exactly one link",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := f.build(cmd, args)
			if err != nil {
				return err
			}
			c, err := a.open()
			if err != nil {
				return err
			}
			if err := c.Links().Remove(cmd.Context(), link); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", model.Normalize(link).NaturalKey())
			return nil
		},
	}

	cmd.Flags().StringVar(&f.role, "role", "", "person-entry role (required for person-entry)")
	return cmd
}

func linkRoleCmd(a *app) *cobra.Command {
	var oldRole, newRole string

	cmd := &cobra.Command{
		Use:   "role <personId> <entryId>",
		Short: "Change the role of a person-entry link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			current := model.PersonEntry{PersonID: args[0], EntryID: args[1], Role: oldRole}
			updated := model.PersonEntry{PersonID: args[0], EntryID: args[1], Role: newRole}
			link, err := c.Links().Edit(cmd.Context(), current, updated)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %s\n", link.NaturalKey())
			return nil
		},
	}

	cmd.Flags().StringVar(&oldRole, "old", "", "current role")
	cmd.Flags().StringVar(&newRole, "new", "", "new role")
	_ = cmd.MarkFlagRequired("old")
	return cmd
}
