//go:build !prod

package server

import "embed"

// Stub embed for development/testing - no actual files needed
var webFiles embed.FS
