package dispatch

import (
	"fmt"
	"strings"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/catalog"
)

// excerptLen is the number of runes of description kept in browse lines.
const excerptLen = 100

func render(items []catalog.Entity, line func(catalog.Entity) string) []string {
	lines := make([]string, len(items))
	for i, e := range items {
		lines[i] = line(e)
	}
	return lines
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func productLine(p catalog.Entity) string {
	return fmt.Sprintf("- %s (ID: %s): %s. Price: %s VND",
		p.Field("name"), p.Field("id"), p.Field("description"), p.Field("price"))
}

func browseLine(p catalog.Entity) string {
	return fmt.Sprintf("- %s (ID: %s): %s Price: %s VND",
		p.Field("name"), p.Field("id"), excerpt(p.Field("description"), excerptLen), p.Field("price"))
}

// groupLine renders a category.
func groupLine(g catalog.Entity) string {
	return fmt.Sprintf("- %s (ID: %s): %s", g.Field("name"), g.Field("id"), g.Field("description"))
}

func detailLines(p catalog.Entity) []string {
	return []string{
		"Name: " + p.Field("name"),
		"ID: " + p.Field("id"),
		"Price: " + p.Field("price") + " VND",
		"Description: " + p.Field("description"),
		"Material: " + p.Field("material"),
		"Color: " + p.Field("color"),
		"Size: " + p.Field("size"),
	}
}

// excerpt keeps the first n runes of s. A cut text ends in "...", a whole
// one in ".".
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return strings.TrimRight(s, ".") + "."
	}
	return string(r[:n]) + "..."
}
