package build

import "fmt"

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent returns the product token sent on outbound storefront requests.
func UserAgent() string {
	return fmt.Sprintf("store-insights/%s (+https://github.com/rohmanhakim/store-insights)", Version)
}
