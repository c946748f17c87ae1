package deps

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lexcodex/incant/execute"
	"github.com/lexcodex/incant/extract"
)

// Set holds installed or missing module names, matched case-insensitively the
// way package registries do.
type Set map[string]struct{}

// NewSet builds a set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts a name.
func (s Set) Add(name string) {
	s[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
}

// Has reports membership.
func (s Set) Has(name string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns members in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstallError reports the modules still missing after a tolerant install
// pass. It is advisory; callers may proceed to execution with a warning.
type InstallError struct {
	Failed []string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install: %s", strings.Join(e.Failed, ", "))
}

// Resolver reconciles the modules an artifact references against what the
// language's package manager has installed.
type Resolver struct {
	runner  execute.CommandRunner
	timeout time.Duration
}

// NewResolver wires the resolver to a subprocess runner for package-manager
// invocations.
func NewResolver(runner execute.CommandRunner, timeout time.Duration) *Resolver {
	if runner == nil {
		runner = execute.HostCommandRunner{}
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Resolver{runner: runner, timeout: timeout}
}

// Missing computes referenced minus installed, preserving sorted order.
func Missing(referenced []string, installed Set) []string {
	var missing []string
	for _, name := range referenced {
		if !installed.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Resolve scans the artifact and returns the modules not yet installed.
func (r *Resolver) Resolve(artifact extract.Artifact, installed Set) []string {
	return Missing(Scan(artifact.Body, artifact.Language), installed)
}

// Install attempts each missing module through the language's package
// manager. One module failing does not stop the rest; the surviving failures
// come back as an InstallError.
func (r *Resolver) Install(ctx context.Context, modules []string, language string) error {
	var failed []string
	for _, module := range modules {
		args, ok := installArgs(module, language)
		if !ok {
			failed = append(failed, module)
			continue
		}
		_, stderr, err := r.runner.Run(ctx, execute.CommandRequest{
			Args:    args,
			Timeout: r.timeout,
		})
		if err != nil {
			log.Printf("[deps] install %s failed: %v: %s", module, err, truncateDetail(stderr))
			failed = append(failed, module)
			continue
		}
		log.Printf("[deps] installed %s", module)
	}
	if len(failed) > 0 {
		return &InstallError{Failed: failed}
	}
	return nil
}

// Installed asks the package manager what is already present. Best effort: an
// unreadable listing yields an empty set and the error.
func (r *Resolver) Installed(ctx context.Context, language string) (Set, error) {
	installed := Set{}
	switch strings.ToLower(language) {
	case "python":
		stdout, _, err := r.runner.Run(ctx, execute.CommandRequest{
			Args:    []string{"python3", "-m", "pip", "list", "--format=freeze"},
			Timeout: r.timeout,
		})
		if err != nil {
			return installed, fmt.Errorf("pip list: %w", err)
		}
		for _, line := range strings.Split(stdout, "\n") {
			name, _, _ := strings.Cut(strings.TrimSpace(line), "==")
			if name != "" {
				installed.Add(name)
			}
		}
	case "javascript":
		stdout, _, err := r.runner.Run(ctx, execute.CommandRequest{
			Args:    []string{"npm", "ls", "--parseable", "--depth=0"},
			Timeout: r.timeout,
		})
		if err != nil {
			return installed, fmt.Errorf("npm ls: %w", err)
		}
		for _, line := range strings.Split(stdout, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if name := filepath.Base(line); name != "." && name != "/" {
				installed.Add(name)
			}
		}
	}
	return installed, nil
}

func installArgs(module, language string) ([]string, bool) {
	switch strings.ToLower(language) {
	case "python":
		return []string{"python3", "-m", "pip", "install", PackageFor(module, "python")}, true
	case "javascript":
		return []string{"npm", "install", PackageFor(module, "javascript")}, true
	default:
		return nil, false
	}
}

// PackageFor maps a module name onto the registry package that provides it.
func PackageFor(module, language string) string {
	if strings.ToLower(language) == "python" {
		if pkg, ok := pipAliases[strings.ToLower(module)]; ok {
			return pkg
		}
	}
	return module
}

// pipAliases covers the common modules whose import name differs from the
// package published on PyPI.
var pipAliases = map[string]string{
	"cv2":      "opencv-python",
	"pil":      "pillow",
	"sklearn":  "scikit-learn",
	"bs4":      "beautifulsoup4",
	"yaml":     "pyyaml",
	"dotenv":   "python-dotenv",
	"dateutil": "python-dateutil",
	"crypto":   "pycryptodome",
}

func truncateDetail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "...(truncated)"
	}
	return s
}
