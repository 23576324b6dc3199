package app

import "os"

// TestMode reports whether the process runs under the integration test
// harness. Rate limiting and secure headers are relaxed in that mode.
func TestMode() bool {
	return os.Getenv("TOYSHOP_TEST_MODE") == "1"
}
