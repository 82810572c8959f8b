package models

import (
	"fmt"
	"strings"
)

// ItemType selects which table an item operation targets
type ItemType string

const (
	ItemTypeFolder   ItemType = "folders"
	ItemTypeBookmark ItemType = "bookmarks"
)

// ParseItemType accepts the URL tokens "folders" and "bookmarks" (singular forms too)
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "folders", "folder":
		return ItemTypeFolder, nil
	case "bookmarks", "bookmark":
		return ItemTypeBookmark, nil
	default:
		return "", fmt.Errorf("unknown item type %q", s)
	}
}

func (t ItemType) String() string {
	return string(t)
}
