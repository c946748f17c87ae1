package deps

import (
	"regexp"
	"strings"
)

var missingModuleSignals = []string{
	"ModuleNotFound",
	"ImportError",
	"No module named",
	"Cannot find module",
}

var (
	pythonQuotedModule = regexp.MustCompile(`No module named '([^']+)'`)
	pythonBareModule   = regexp.MustCompile(`No module named ([A-Za-z_][\w.]*)`)
	nodeMissingModule  = regexp.MustCompile(`Cannot find module '([^']+)'`)
)

// IndicatesMissingModule reports whether stderr looks like an import failure
// worth an install-and-retry pass.
func IndicatesMissingModule(stderr string) bool {
	for _, signal := range missingModuleSignals {
		if strings.Contains(stderr, signal) {
			return true
		}
	}
	return false
}

// PackageFromError pulls the missing module name out of an interpreter's
// error output. Empty when nothing recognizable is found.
func PackageFromError(stderr, language string) string {
	switch strings.ToLower(language) {
	case "python":
		if m := pythonQuotedModule.FindStringSubmatch(stderr); m != nil {
			return strings.SplitN(m[1], ".", 2)[0]
		}
		if m := pythonBareModule.FindStringSubmatch(stderr); m != nil {
			return strings.SplitN(m[1], ".", 2)[0]
		}
	case "javascript":
		if m := nodeMissingModule.FindStringSubmatch(stderr); m != nil {
			return jsPackage(m[1])
		}
	}
	return ""
}
