package app

import (
	"os"
	"sync"
)

// TestModeEnv, when set to "1", makes the binaries exit before dialing Postgres or Redis.
const TestModeEnv = "WOFR_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether runtime side effects should be skipped. The
// environment is read once per process.
func InTestMode() bool {
	return testMode()
}
