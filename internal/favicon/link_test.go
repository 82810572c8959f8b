package favicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindIconHref(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{name: "icon", page: `<html><head><link rel="icon" href="/favicon.png"></head></html>`, want: "/favicon.png"},
		{name: "shortcut icon", page: `<link rel="shortcut icon" href="a.ico">`, want: "a.ico"},
		{name: "case and whitespace", page: `<LINK REL="Shortcut   Icon" HREF="b.ico"/>`, want: "b.ico"},
		{name: "first match wins", page: `<link rel="icon" href="1.ico"><link rel="icon" href="2.ico">`, want: "1.ico"},
		{name: "skips stylesheet", page: `<link rel="stylesheet" href="s.css"><link rel="icon" href="i.ico">`, want: "i.ico"},
		{name: "blank href stops scan", page: `<link rel="icon" href=" "><link rel="icon" href="ok.ico">`, want: ""},
		{name: "missing href stops scan", page: `<link rel="icon"><link rel="icon" href="/second.ico">`, want: ""},
		{name: "apple touch icon ignored", page: `<link rel="apple-touch-icon" href="t.png">`, want: ""},
		{name: "no link", page: `<html><body>hello</body></html>`, want: ""},
		{name: "attribute order", page: `<link href="x.svg" type="image/svg+xml" rel="icon">`, want: "x.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findIconHref(strings.NewReader(tt.page)))
		})
	}
}
