package assets

import "embed"

// AssetsFS holds the stylesheet and scripts served under /assets/.
// css/output.css and js/htmx.min.js are produced by `do gen`.
//
//go:embed css js
var AssetsFS embed.FS
