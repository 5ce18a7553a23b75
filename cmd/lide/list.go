package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/search"
	"github.com/goliatone/go-lide-client/transport"
)

func listCmd(a *app) *cobra.Command {
	var (
		q    string
		page int
	)

	cmd := &cobra.Command{
		Use:       "list {persons|entries|tags|media}",
		Short:     "List one page of records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"persons", "entries", "tags", "media"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := model.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}

			c, err := a.open()
			if err != nil {
				return err
			}
			reader := c.Reader()
			req := transport.PageRequest{Q: q, Page: page, Size: a.cfg.PageSize}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			switch kind {
			case model.KindPerson:
				p, err := reader.Persons(ctx, req)
				if err != nil {
					return err
				}
				return printPage(out, p, func(p model.Person) []any {
					return []any{p.ID, p.DisplayName(), dateOrDash(p.BirthDate)}
				})
			case model.KindEntry:
				p, err := reader.Entries(ctx, req)
				if err != nil {
					return err
				}
				return printPage(out, p, func(e model.Entry) []any {
					return []any{e.ID, e.Type, e.Title}
				})
			case model.KindTag:
				p, err := reader.Tags(ctx, req)
				if err != nil {
					return err
				}
				return printPage(out, p, func(t model.Tag) []any {
					return []any{t.ID, t.Name}
				})
			default:
				p, err := reader.MediaList(ctx, req)
				if err != nil {
					return err
				}
				return printPage(out, p, func(m model.Media) []any {
					return []any{m.ID, m.MediaType, m.URI}
				})
			}
		},
	}

	cmd.Flags().StringVar(&q, "q", "", "search text")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	return cmd
}

func printPage[T any](w io.Writer, p transport.Page[T], row func(T) []any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range p.Items {
		for i, col := range row(item) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	state := search.State[T]{Items: p.Items, Total: p.Total, Page: p.Page, Size: p.Size}
	fmt.Fprintln(w, state.Range())
	return nil
}

func dateOrDash(d *model.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}
