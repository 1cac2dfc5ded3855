package main

import (
	"io"

	"github.com/pkg/browser"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

// browserOpener hands URLs to the platform's browser. The helper's output
// is discarded so it cannot draw over the terminal UI.
func browserOpener() dashboard.Opener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return dashboard.OpenerFunc(browser.OpenURL)
}
