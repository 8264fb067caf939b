// Package testing switches the process into test mode for any test binary
// that imports it.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	"github.com/odyssey-erp/backoffice/internal/testing/guard"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv(guard.TestModeEnv, "1")
		if os.Getenv("API_BASE_URL") == "" {
			_ = os.Setenv("API_BASE_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
