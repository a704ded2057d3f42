// Package web embeds the back-office templates and static assets so the
// server binary ships self-contained.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets and browser scripts served under /static/.
//
//go:embed static/**/*
var Static embed.FS
