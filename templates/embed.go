// Package templates embeds the HTML templates rendered by the view package.
package templates

import "embed"

//go:embed *.html bills/*.html partials/*.html
var FS embed.FS
