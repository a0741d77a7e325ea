//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger leaves the router untouched; the raw document stays available
// at /openapi.json. Build with -tags swagger for the interactive UI.
func MountSwagger(chi.Router) {}
