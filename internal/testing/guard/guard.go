// Package guard flips the process into test mode when imported.
package guard

import (
	"os"
	"sync"
)

// TestModeEnv is read by app.InTestMode.
const TestModeEnv = "BACKOFFICE_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(TestModeEnv) == "" {
			_ = os.Setenv(TestModeEnv, "1")
		}
	})
}
