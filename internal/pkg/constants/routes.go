package constants

// Static route constants
const (
	APIRoute  = "/api"
	DocsRoute = "/docs/api/"
)
