package cli

import (
	"fmt"

	"propadmin/internal/docs"
	"propadmin/internal/format"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

type topicList struct {
	Topics []docs.Topic `json:"topics"`
}

func (l topicList) Table() format.Table {
	t := format.Table{Headers: []string{"Topic", "Title"}}
	for _, tp := range l.Topics {
		t.Rows = append(t.Rows, []string{tp.Name, tp.Title})
	}
	return t
}

func newDocsCmd(app *App) *cobra.Command {
	var (
		raw    bool
		render bool
	)

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show reference pages (keys, views, addresses, config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, topicList{Topics: docs.Topics()})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `propadmin docs` to list topics)", topic))
			}

			switch {
			case render:
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return writeErr(cmd, err)
				}
				out, err := r.Render(body)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"topic": topic, "markdown": body})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")
	cmd.Flags().BoolVar(&render, "render", false, "Render the markdown for the terminal")

	return cmd
}
