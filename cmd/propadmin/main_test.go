package main

import (
	"reflect"
	"testing"

	"propadmin/internal/cli"
)

func TestRewriteViewShortcutArgs(t *testing.T) {
	t.Parallel()

	commands := commandNames(cli.NewRootCmd())

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"propadmin"},
			want: []string{"propadmin"},
		},
		{
			name: "view first token",
			in:   []string{"propadmin", "invoices-income"},
			want: []string{"propadmin", "browse", "invoices-income"},
		},
		{
			name: "view after value flag",
			in:   []string{"propadmin", "--backend", "http://localhost:8080", "tenants"},
			want: []string{"propadmin", "--backend", "http://localhost:8080", "browse", "tenants"},
		},
		{
			name: "view after equals flag",
			in:   []string{"propadmin", "--backend=http://localhost:8080", "tenants"},
			want: []string{"propadmin", "--backend=http://localhost:8080", "browse", "tenants"},
		},
		{
			name: "view after bool flag",
			in:   []string{"propadmin", "--pretty", "tenants", "--query", "search=ana"},
			want: []string{"propadmin", "--pretty", "browse", "tenants", "--query", "search=ana"},
		},
		{
			name: "view after double dash",
			in:   []string{"propadmin", "--", "tenants"},
			want: []string{"propadmin", "--", "browse", "tenants"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"propadmin", "list", "tenants"},
			want: []string{"propadmin", "list", "tenants"},
		},
		{
			name: "help not rewritten",
			in:   []string{"propadmin", "help", "list"},
			want: []string{"propadmin", "help", "list"},
		},
		{
			name: "flags only",
			in:   []string{"propadmin", "--log", "/tmp/p.log"},
			want: []string{"propadmin", "--log", "/tmp/p.log"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteViewShortcutArgs(tt.in, commands)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteViewShortcutArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
