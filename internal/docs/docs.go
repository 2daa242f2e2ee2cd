// Package docs holds the reference pages printed by `propadmin docs`.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed content/*.md
var content embed.FS

// Topic is one reference page.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists the pages in name order.
func Topics() []Topic {
	entries, err := fs.ReadDir(content, "content")
	if err != nil {
		return nil
	}
	out := make([]Topic, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if !ok || e.IsDir() {
			continue
		}
		body, _ := Get(name)
		out = append(out, Topic{Name: name, Title: title(body)})
	}
	return out
}

// Get returns the markdown for a topic name (case-insensitive).
func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || !fs.ValidPath(name) || strings.Contains(name, "/") {
		return "", false
	}
	b, err := content.ReadFile("content/" + name + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}

func title(md string) string {
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		if t, ok := strings.CutPrefix(sc.Text(), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}
