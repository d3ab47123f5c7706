// Package testing switches stockroom binaries into test mode. Importing it
// for side effects makes cmd entrypoints return before touching Postgres
// or Redis.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// TestModeEnv is read by app.InTestMode.
const TestModeEnv = "STOCKROOM_TEST_MODE"

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv(TestModeEnv, "1")
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
