package favicon

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// findIconHref returns the href of the first <link> declaring rel="icon" or
// rel="shortcut icon". It returns "" when there is no such link or the first
// one carries no href; later icon links are not consulted.
func findIconHref(r io.Reader) string {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "link" || !hasAttr {
				continue
			}

			var rel, href string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "rel":
					rel = string(val)
				case "href":
					href = strings.TrimSpace(string(val))
				}
				if !more {
					break
				}
			}

			if isIconRel(rel) {
				return href
			}
		}
	}
}

// isIconRel matches rel case-insensitively with internal whitespace collapsed
func isIconRel(rel string) bool {
	switch strings.ToLower(strings.Join(strings.Fields(rel), " ")) {
	case "icon", "shortcut icon":
		return true
	}
	return false
}
