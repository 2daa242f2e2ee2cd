package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type appearanceProfileID string

const (
	appearanceDefault   appearanceProfileID = "default"
	appearanceAlabaster appearanceProfileID = "alabaster"
	appearanceDracula   appearanceProfileID = "dracula"
	appearanceMono      appearanceProfileID = "mono"
)

// palette is every color the console draws with. Modal colors left nil fall back to the
// surface and control colors.
type palette struct {
	muted, chrome                lipgloss.TerminalColor
	selectedBg, selectedFg       lipgloss.TerminalColor
	surfaceBg, surfaceFg         lipgloss.TerminalColor
	controlBg, inputBg           lipgloss.TerminalColor
	accent, accentFg             lipgloss.TerminalColor
	mark, errorFg                lipgloss.TerminalColor
	modalBg, modalFg             lipgloss.TerminalColor
	modalHeaderBg, modalHeaderFg lipgloss.TerminalColor
	good, warn, bad              lipgloss.Style
}

type appearanceProfile struct {
	id    appearanceProfileID
	label string
	build func() palette
}

var appearanceProfiles = []appearanceProfile{
	{appearanceDefault, "Default", defaultPalette},
	{appearanceAlabaster, "Alabaster", alabasterPalette},
	{appearanceDracula, "Dracula", draculaPalette},
	{appearanceMono, "Mono", monoPalette},
}

var (
	appearanceMu      sync.RWMutex
	currentAppearance = appearanceDefault
	knownAppearances  = func() []appearanceProfileID {
		ids := make([]appearanceProfileID, 0, len(appearanceProfiles))
		for _, p := range appearanceProfiles {
			ids = append(ids, p.id)
		}
		return ids
	}()

	statusGoodStyle lipgloss.Style
	statusWarnStyle lipgloss.Style
	statusBadStyle  lipgloss.Style
)

func defaultPalette() palette {
	return palette{
		muted:      ac("240", "243"),
		chrome:     ac("240", "245"),
		selectedBg: ac("#e9e9e9", "#262626"),
		selectedFg: ac("235", "255"),
		surfaceBg:  ac("255", "235"),
		surfaceFg:  ac("235", "252"),
		controlBg:  ac("252", "235"),
		inputBg:    ac("254", "234"),
		accent:     ac("27", "62"),
		accentFg:   ac("255", "235"),
		mark:       ac("28", "114"),
		errorFg:    ac("160", "203"),
		good:       lipgloss.NewStyle().Foreground(ac("28", "114")),
		warn:       lipgloss.NewStyle().Foreground(ac("130", "214")),
		bad:        lipgloss.NewStyle().Foreground(ac("160", "203")).Bold(true),
	}
}

// alabasterPalette is light-first with little chroma.
func alabasterPalette() palette {
	p := defaultPalette()
	p.surfaceBg, p.surfaceFg = ac("#f7f7f7", "#0f0f0f"), ac("#434343", "#cecece")
	p.controlBg, p.inputBg = ac("#eeeeee", "#161616"), ac("#ffffff", "#111111")
	p.selectedFg = ac("#1f1f1f", "#f8f8f8")
	p.muted, p.chrome = ac("#777777", "#7a7a7a"), ac("#6f6f6f", "#9a9a9a")
	p.accent, p.accentFg = ac("#325cc0", "#5f87d7"), ac("#ffffff", "#0f0f0f")
	p.modalBg = p.controlBg
	p.modalHeaderBg = ac("#e9e9e9", "#262626")
	p.good = lipgloss.NewStyle().Foreground(ac("#22863a", "#97e023"))
	p.warn = lipgloss.NewStyle().Foreground(ac("#ff8b00", "#ffaf00"))
	return p
}

func draculaPalette() palette {
	p := defaultPalette()
	p.surfaceBg, p.surfaceFg = ac("#f8f8f2", "#282a36"), ac("#282a36", "#f8f8f2")
	p.controlBg, p.inputBg = ac("#e9e9e2", "#1f202a"), ac("#e1e1db", "#1b1c25")
	p.selectedBg, p.selectedFg = ac("#d7d7cf", "#44475a"), ac("#282a36", "#f8f8f2")
	p.muted, p.chrome = ac("#4b5563", "#9aa0b1"), ac("#475569", "#c0c3d2")
	p.accent, p.accentFg = ac("#0ea5e9", "#8be9fd"), ac("#f8f8f2", "#282a36")
	p.mark, p.errorFg = ac("#15803d", "#50fa7b"), ac("#b91c1c", "#ff5555")
	p.modalBg = p.controlBg
	p.modalHeaderBg = p.selectedBg
	p.good = lipgloss.NewStyle().Foreground(p.mark)
	p.warn = lipgloss.NewStyle().Foreground(ac("#b45309", "#ffb86c"))
	p.bad = lipgloss.NewStyle().Foreground(p.errorFg).Bold(true)
	return p
}

// monoPalette keeps only the surface foreground; tones become text attributes.
func monoPalette() palette {
	p := defaultPalette()
	fg := p.surfaceFg
	p.selectedBg, p.selectedFg = ac("253", "236"), fg
	p.accent, p.mark, p.errorFg = fg, fg, fg
	p.good = lipgloss.NewStyle().Foreground(fg)
	p.warn = lipgloss.NewStyle().Foreground(fg).Underline(true)
	p.bad = lipgloss.NewStyle().Foreground(fg).Bold(true)
	return p
}

func usePalette(p palette) {
	colorMuted, colorChromeMutedFg = p.muted, p.chrome
	colorSelectedBg, colorSelectedFg = p.selectedBg, p.selectedFg
	colorSurfaceBg, colorSurfaceFg = p.surfaceBg, p.surfaceFg
	colorControlBg, colorInputBg = p.controlBg, p.inputBg
	colorAccent, colorAccentFg = p.accent, p.accentFg
	colorMarkFg, colorErrorFg = p.mark, p.errorFg

	colorModalSurfaceBg = orColor(p.modalBg, p.surfaceBg)
	colorModalSurfaceFg = orColor(p.modalFg, p.surfaceFg)
	colorModalHeaderBg = orColor(p.modalHeaderBg, p.controlBg)
	colorModalHeaderFg = orColor(p.modalHeaderFg, p.surfaceFg)

	statusGoodStyle, statusWarnStyle, statusBadStyle = p.good, p.warn, p.bad
}

func orColor(c, fallback lipgloss.TerminalColor) lipgloss.TerminalColor {
	if c == nil {
		return fallback
	}
	return c
}

// applyAppearancePreference picks the profile from PROPADMIN_TUI_PROFILE, then the configured
// one, then the default.
func applyAppearancePreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("PROPADMIN_TUI_PROFILE")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	if v == "" {
		v = string(appearanceDefault)
	}
	setAppearanceProfile(appearanceProfileID(v))
}

// setAppearanceProfile switches the palette. Unknown ids are ignored.
func setAppearanceProfile(id appearanceProfileID) {
	appearanceMu.Lock()
	defer appearanceMu.Unlock()

	for _, p := range appearanceProfiles {
		if p.id == id {
			usePalette(p.build())
			currentAppearance = id
			return
		}
	}
}

func appearanceLabel(id appearanceProfileID) string {
	for _, p := range appearanceProfiles {
		if p.id == id {
			return p.label
		}
	}
	return appearanceProfiles[0].label
}

func init() {
	usePalette(defaultPalette())
}
