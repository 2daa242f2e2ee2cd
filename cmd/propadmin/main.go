package main

import (
	"os"
	"strings"

	"propadmin/internal/cli"

	"github.com/spf13/cobra"
)

// rewriteViewShortcutArgs turns `propadmin <view> ...` into `propadmin browse <view> ...`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first (`propadmin --backend URL invoices-income`), so the first
// positional token is what counts, not argv[1].
func rewriteViewShortcutArgs(argv []string, commands map[string]bool) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--backend":   true,
		"--token":     true,
		"--log":       true,
		"--log-level": true,
		"--timeout":   true,
		"--format":    true,
	}

	insertBrowse := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "browse")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && !commands[argv[i+1]] {
				return insertBrowse(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if commands[a] {
			return argv
		}
		return insertBrowse(i)
	}
	return argv
}

func commandNames(root *cobra.Command) map[string]bool {
	names := map[string]bool{"help": true, "completion": true, cobra.ShellCompRequestCmd: true, cobra.ShellCompNoDescRequestCmd: true}
	for _, c := range root.Commands() {
		names[c.Name()] = true
		for _, a := range c.Aliases {
			names[a] = true
		}
	}
	return names
}

func main() {
	cmd := cli.NewRootCmd()
	cmd.SetArgs(rewriteViewShortcutArgs(os.Args, commandNames(cmd))[1:])
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
