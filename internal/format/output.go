package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Table is a rectangular rendering of a command result.
type Table struct {
	Headers []string
	Rows    [][]string
	// Footer is an optional trailing row (totals).
	Footer []string
}

// Tabler is implemented by results that can print as a table.
type Tabler interface {
	Table() Table
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
// - table (only for values implementing Tabler)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml":
		return WriteYAML(w, v)
	case "table":
		t, ok := v.(Tabler)
		if !ok {
			return fmt.Errorf("format table: %T has no table form", v)
		}
		return WriteTable(w, t.Table())
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteYAML goes through JSON first so json tags name the keys. JSON is valid YAML, so decoding
// it into a yaml.Node keeps field order; only the flow and quoting styles are reset.
func WriteYAML(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	blockStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the JSON flow and quote styles. Strings that would read back as another
// type are still quoted by the encoder because their tag stays !!str.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func WriteTable(w io.Writer, t Table) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	footer := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	last := len(t.Rows)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case t.Footer != nil && row == last:
				return footer
			}
			return cell
		}).
		Headers(t.Headers...)
	for _, r := range t.Rows {
		tbl.Row(r...)
	}
	if t.Footer != nil {
		tbl.Row(t.Footer...)
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
