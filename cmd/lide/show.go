package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/model"
)

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show {person|entry} <id>",
		Short: "Show a person or entry with everything linked to it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch kind, _ := model.ParseKind(args[0]); kind {
			case model.KindPerson:
				p, err := c.Reader().PersonRead(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				printPerson(out, p)
			case model.KindEntry:
				e, err := c.Reader().EntryRead(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				printEntry(out, e)
			default:
				return fmt.Errorf("show supports person and entry, not %q", args[0])
			}
			return nil
		},
	}
}

func printPerson(w io.Writer, p model.PersonRead) {
	fmt.Fprintf(w, "%s (%s)\n", p.DisplayName(), p.ID)
	if p.BirthDate != nil && !p.BirthDate.IsZero() {
		fmt.Fprintf(w, "born: %s\n", p.BirthDate)
	}
	for _, t := range p.Tags {
		fmt.Fprintf(w, "tag: %s\n", t.Name)
	}
	for _, e := range p.Entries {
		fmt.Fprintf(w, "entry: %s [%s] as %s\n", e.Title, e.ID, e.Role)
	}
	for _, r := range p.RelationsOut {
		fmt.Fprintf(w, "relation: %s of %s [%s]\n", r.Type, r.OtherPersonDisplayName, r.ID)
	}
	for _, r := range p.RelationsIn {
		fmt.Fprintf(w, "relation: %s is %s [%s]\n", r.OtherPersonDisplayName, r.Type, r.ID)
	}
}

func printEntry(w io.Writer, e model.EntryRead) {
	fmt.Fprintf(w, "%s (%s, %s)\n", e.Title, e.Type, e.ID)
	if e.Content != "" {
		fmt.Fprintln(w, e.Content)
	}
	for _, p := range e.Persons {
		fmt.Fprintf(w, "person: %s as %s\n", p.Person().DisplayName(), p.Role)
	}
	for _, t := range e.Tags {
		fmt.Fprintf(w, "tag: %s\n", t.Name)
	}
	for _, m := range e.Media {
		caption := m.Title
		if m.Caption != nil {
			caption = *m.Caption
		}
		fmt.Fprintf(w, "media: %s %s\n", m.URI, caption)
	}
}
