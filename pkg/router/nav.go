package router

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BuildNavs derives a navigation tree from routes. Dynamic descriptors are
// skipped since they cannot be linked without a parameter value. Grouping
// descriptors produce entries without a Path. The root and index directories
// are folded into their parent.
func BuildNavs(routes []RouteDescriptor) []NavItem {
	return buildNavs(routes, "")
}

func buildNavs(routes []RouteDescriptor, parent string) []NavItem {
	var items []NavItem
	for _, d := range routes {
		if d.IsDynamic() {
			continue
		}

		key := parent
		if d.Key != "" {
			if key != "" {
				key += "/"
			}
			key += d.Key
		}

		children := buildNavs(d.SubRoute, key)
		if d.Key == "" || d.Key == "index" {
			items = append(items, children...)
			continue
		}
		if !d.Exact && len(children) == 0 {
			continue
		}

		item := NavItem{
			Key:   key,
			Title: Title(d.Key),
			Items: children,
		}
		if d.Exact {
			item.Path = d.Path
		}
		items = append(items, item)
	}
	return items
}

// Title derives a display title from a route key: "media.picture" becomes
// "Media Picture", "user-settings" becomes "User Settings".
func Title(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
