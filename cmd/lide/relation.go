package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/model"
)

func relationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relation",
		Short: "Manage relations between persons",
	}
	cmd.AddCommand(relationAddCmd(a), relationRemoveCmd(a))
	return cmd
}

func relationAddCmd(a *app) *cobra.Command {
	var relType, fromDate, toDate, note string

	cmd := &cobra.Command{
		Use:   "add <fromPersonId> <toPersonId>",
		Short: "Relate one person to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel := model.PersonRelation{FromPersonID: args[0], ToPersonID: args[1], Type: relType, Note: note}

			var err error
			if rel.ValidFrom, err = optionalDate("from-date", fromDate); err != nil {
				return err
			}
			if rel.ValidTo, err = optionalDate("to-date", toDate); err != nil {
				return err
			}

			c, err := a.open()
			if err != nil {
				return err
			}
			created, err := c.Links().Add(cmd.Context(), rel)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created relation %s\n", created.(model.PersonRelation).ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&relType, "type", "", "relation type, e.g. otec or manželka (required)")
	f.StringVar(&fromDate, "from-date", "", "valid from, YYYY-MM-DD")
	f.StringVar(&toDate, "to-date", "", "valid to, YYYY-MM-DD")
	f.StringVar(&note, "note", "", "free note")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func relationRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <relationId>",
		Short: "Remove a relation by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			if err := c.Links().Remove(cmd.Context(), model.PersonRelation{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed relation %s\n", args[0])
			return nil
		},
	}
}

func optionalDate(flag, value string) (*model.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}
