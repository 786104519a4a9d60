package plateshare

import "embed"

// ContentFS holds the markdown pages shipped with the binary.
// CONTENT_PATH overrides it at runtime.
//
//go:embed content
var ContentFS embed.FS
