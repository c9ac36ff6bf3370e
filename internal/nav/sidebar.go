package nav

import (
	"html/template"
	"strings"

	"github.com/fleetops/fleet-console/internal/rbac"
	"github.com/fleetops/fleet-console/internal/shared"
)

// Item is a rendered sidebar link.
type Item struct {
	Label  string
	Href   string
	Icon   template.HTML
	Active bool
}

// Section is a rendered sidebar group.
type Section struct {
	Title string
	Items []Item
}

// Sidebar filters Menu for user and marks the entry matching currentPath.
func Sidebar(user shared.User, currentPath string) []Section {
	return build(Menu, user, currentPath)
}

func build(menu []Group, user shared.User, currentPath string) []Section {
	if user.IsZero() {
		return nil
	}
	sections := make([]Section, 0, len(menu))
	activeLen := 0
	var active *Item
	for _, group := range menu {
		section := Section{Title: group.Title}
		for _, entry := range group.Entries {
			if !rbac.Allowed(user, entry.Perms...) {
				continue
			}
			section.Items = append(section.Items, Item{
				Label: entry.Label,
				Href:  entry.Href,
				Icon:  sanitizeIcon(entry.Icon),
			})
		}
		if len(section.Items) > 0 {
			sections = append(sections, section)
		}
	}
	for si := range sections {
		for ii := range sections[si].Items {
			item := &sections[si].Items[ii]
			if n := matchLen(item.Href, currentPath); n > activeLen {
				activeLen = n
				active = item
			}
		}
	}
	if active != nil {
		active.Active = true
	}
	return sections
}

// matchLen returns len(href) when href is a path prefix of current, else 0.
func matchLen(href, current string) int {
	if href == "" || current == "" {
		return 0
	}
	if href == "/" {
		if current == "/" {
			return 1
		}
		return 0
	}
	if current == href || strings.HasPrefix(current, strings.TrimSuffix(href, "/")+"/") {
		return len(href)
	}
	return 0
}
