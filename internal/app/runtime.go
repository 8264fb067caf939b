package app

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/odyssey-erp/backoffice/internal/testing/guard"
)

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the test mode flag once.
func detectTestMode() {
	testModeFlag.Store(os.Getenv(guard.TestModeEnv) == "1")
}

// InTestMode reports whether the application should skip runtime side
// effects such as the Redis ping and request logging.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}
