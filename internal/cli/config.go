package cli

import (
	"strings"

	"propadmin/internal/format"
	"propadmin/internal/store"

	"github.com/spf13/cobra"
)

type configView struct {
	Path string              `json:"path"`
	File *store.GlobalConfig `json:"file"`
	// Effective is the file merged with PROPADMIN_* variables.
	Effective *store.GlobalConfig `json:"effective"`
}

func (c configView) Table() format.Table {
	t := format.Table{Headers: []string{"Key", "File", "Effective"}}
	file, eff := configValues(c.File), configValues(c.Effective)
	for _, k := range store.ConfigKeys() {
		t.Rows = append(t.Rows, []string{k, file[k], eff[k]})
	}
	return t
}

func configValues(c *store.GlobalConfig) map[string]string {
	out := map[string]string{}
	if c == nil {
		return out
	}
	out["backend"] = c.Backend
	out["token"] = c.Token
	out["defaultView"] = c.DefaultView
	out["logPath"] = c.LogPath
	out["logLevel"] = c.LogLevel
	if c.TimeoutSeconds > 0 {
		out["timeoutSeconds"] = c.Timeout().String()
	}
	if c.TUI != nil {
		out["tui.profile"] = c.TUI.Profile
	}
	return out
}

// redacted returns a copy of c with the token masked.
func redacted(c *store.GlobalConfig) *store.GlobalConfig {
	if c == nil {
		return nil
	}
	cp := *c
	if cp.Token != "" {
		keep := 4
		if len(cp.Token) <= keep*2 {
			keep = 0
		}
		cp.Token = cp.Token[:keep] + strings.Repeat("*", 8)
	}
	return &cp
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.propadmin/config.json",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the config file and the effective settings (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			file, err := store.LoadFileConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, configView{Path: path, File: redacted(file), Effective: redacted(app.cfg)})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a config key; omit the value to clear it",
		Long:  "Keys: " + strings.Join(store.ConfigKeys(), ", "),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadFileConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := cfg.SetConfigValue(args[0], value); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"key": args[0], "value": configValues(redacted(cfg))[args[0]]})
		},
	})
	return cmd
}
