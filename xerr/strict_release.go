//go:build release

package xerr

func init() {
	// Release builds return runtime anomalies from Handle as ordinary
	// errors instead of asserting.
	Strict = false
}
