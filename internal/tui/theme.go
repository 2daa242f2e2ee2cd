package tui

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors are lipgloss.AdaptiveColor pairs so both light and dark terminals stay readable.
// The active palette is installed by usePalette.
var (
	colorMuted, colorChromeMutedFg           lipgloss.TerminalColor
	colorSelectedBg, colorSelectedFg         lipgloss.TerminalColor
	colorSurfaceBg, colorSurfaceFg           lipgloss.TerminalColor
	colorControlBg, colorInputBg             lipgloss.TerminalColor
	colorAccent, colorAccentFg               lipgloss.TerminalColor
	colorMarkFg, colorErrorFg                lipgloss.TerminalColor
	colorModalSurfaceBg, colorModalSurfaceFg lipgloss.TerminalColor
	colorModalHeaderBg, colorModalHeaderFg   lipgloss.TerminalColor
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func styleMuted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		st = st.Faint(true)
	}
	return st
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true)
}

// applyColorProfilePreference honors NO_COLOR only; CLICOLOR is for piped output.
// TERM and COLORTERM may raise the detected profile but never lower it.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(upgradeProfile(termenv.ColorProfile(), os.Getenv("TERM"), os.Getenv("COLORTERM")))
}

func upgradeProfile(p termenv.Profile, term, colorterm string) termenv.Profile {
	term, colorterm = strings.ToLower(term), strings.ToLower(colorterm)
	switch {
	case p == termenv.Ascii:
		return p
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		return termenv.TrueColor
	case strings.Contains(term, "256color") && p == termenv.ANSI:
		return termenv.ANSI256
	}
	return p
}

// applyThemePreference sets background detection from, in order: PROPADMIN_TUI_THEME
// (light|dark), PROPADMIN_TUI_DARKBG, COLORFGBG and the macOS appearance setting.
func applyThemePreference() {
	if dark, ok := darkBackgroundFromEnv(os.Getenv); ok {
		lipgloss.SetHasDarkBackground(dark)
		return
	}
	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func darkBackgroundFromEnv(getenv func(string) string) (dark, ok bool) {
	switch strings.ToLower(strings.TrimSpace(getenv("PROPADMIN_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(getenv("PROPADMIN_TUI_DARKBG"))); err == nil {
		return b, true
	}
	// COLORFGBG is "fg;bg" (sometimes "fg;default;bg"); bg 0-6 is dark.
	if v := strings.TrimSpace(getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

func macOSHasDarkAppearance() (dark, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	// Light mode has no AppleInterfaceStyle key, so `defaults` exits 1.
	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return false, false
	case err == nil:
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		return false, true
	}
	return false, false
}
