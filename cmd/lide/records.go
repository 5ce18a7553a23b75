package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/mutation"
)

func personCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage persons",
	}
	cmd.AddCommand(personCreateCmd(a))
	return cmd
}

func personCreateCmd(a *app) *cobra.Command {
	var (
		in        model.PersonInput
		birthDate string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if birthDate != "" {
				d, err := model.ParseDate(birthDate)
				if err != nil {
					return fmt.Errorf("--birth-date: %w", err)
				}
				in.BirthDate = &d
			}

			c, err := a.open()
			if err != nil {
				return err
			}
			p, err := mutation.Run[model.Person](cmd.Context(), c.Executor(), mutation.CreatePerson(in))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created person %s (%s)\n", p.ID, p.DisplayName())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.FirstName, "first-name", "", "first name (required)")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Nickname, "nickname", "", "nickname")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Note, "note", "", "free note")
	f.StringVar(&birthDate, "birth-date", "", "birth date as YYYY-MM-DD")
	return cmd
}

func tagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			t, err := mutation.Run[model.Tag](cmd.Context(), c.Executor(), mutation.CreateTag(model.TagInput{Name: args[0]}))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created tag %s (%s)\n", t.ID, t.Name)
			return nil
		},
	})
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a person, entry, tag or media record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := model.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}
			c, err := a.open()
			if err != nil {
				return err
			}
			if _, err := c.Executor().Execute(cmd.Context(), mutation.Delete(kind, args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", kind, args[1])
			return nil
		},
	}
}
