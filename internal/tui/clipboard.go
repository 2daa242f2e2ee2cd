package tui

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")

func copyToClipboard(s string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(strings.ReplaceAll(s, "\r\n", "\n"))
}
