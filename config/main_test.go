package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain runs before all tests in the config package
// It pins GO_ENV to "test" so Load never picks up a developer's .env.development
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "" && env != "test" {
		fmt.Fprintf(os.Stderr, "config tests: overriding GO_ENV=%q with \"test\"\n", env)
	}
	os.Setenv("GO_ENV", "test")

	// Run tests
	os.Exit(m.Run())
}
