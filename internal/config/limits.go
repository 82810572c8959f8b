package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxBookmarkNameLength is the maximum length for bookmark names.
	MaxBookmarkNameLength = 255

	// MaxURLLength is the maximum length for bookmark URLs.
	MaxURLLength = 2048

	// MaxReorderItems caps the id list of a single reorder request.
	MaxReorderItems = 10000
)
