// Package inject attaches a tap's on-disk service environment to a resolved
// invocation, for tasks that declare they require one.
package inject

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rig-run/rig/internal/logging"
	"github.com/rig-run/rig/internal/resolve"
)

const envFile = ".env"

// Inject loads the tap's .env file from the inject path and attaches the
// variables to the invocation, prefixed into its environment. An inject
// path that is not a directory is a structural failure and propagates; a
// tap without a .env file simply contributes an empty environment.
func Inject(inv *resolve.Invocation, appName, injectPath string) (*resolve.Invocation, error) {
	info, err := os.Stat(injectPath)
	if err != nil {
		return nil, fmt.Errorf("inject path for %q: %w", appName, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inject path for %q is not a directory: %s", appName, injectPath)
	}

	path := filepath.Join(injectPath, envFile)
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug().Str("tap", appName).Msg("no service environment to inject")
			inv.Env = map[string]string{}
			return inv, nil
		}
		return nil, fmt.Errorf("read service environment %s: %w", path, err)
	}

	inv.Env = env
	logging.Debug().Str("tap", appName).Int("vars", len(env)).Msg("injected service environment")
	return inv, nil
}
