package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
	yaml "gopkg.in/yaml.v3"

	"github.com/715d/runfmt/internal/reach"
)

// LoaderConfig configures package loading for a fixture.
type LoaderConfig struct {
	// Dir is the fixture module directory.
	Dir string

	// Packages are the patterns to load.
	Packages []string

	// BuildTags are build tags to apply.
	BuildTags []string

	// Tests loads test variants.
	Tests bool

	// GOOS overrides the target operating system.
	GOOS string
}

// LoadPackages loads the fixture's packages with cgo disabled.
func LoadPackages(t *testing.T, cfg *LoaderConfig) []*packages.Package {
	t.Helper()

	env := updateEnv(os.Environ(), "CGO_ENABLED", "0")
	// Fixtures are self-contained modules outside any workspace.
	env = updateEnv(env, "GOWORK", "off")
	if cfg.GOOS != "" {
		env = updateEnv(env, "GOOS", cfg.GOOS)
	}

	t.Logf("Loading packages from %q", cfg.Dir)
	pkgs, err := reach.LoadPackages(t.Context(), reach.LoaderOptions{
		Packages:  cfg.Packages,
		BuildTags: cfg.BuildTags,
		Dir:       cfg.Dir,
		Env:       env,
		Tests:     cfg.Tests,
	})
	require.NoError(t, err)
	return pkgs
}

// LoadTestCase reads dir/expected.yaml. The case is named after dir
// relative to root.
func LoadTestCase(t *testing.T, dir, root string) *TestCase {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "expected.yaml"))
	require.NoError(t, err)

	tc := &TestCase{}
	require.NoError(t, yaml.Unmarshal(data, tc))

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = filepath.Base(dir)
	}
	tc.Dir = rel
	return tc
}

// updateEnv sets key in env, replacing an existing entry.
func updateEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
