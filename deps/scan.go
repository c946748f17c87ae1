package deps

import (
	"regexp"
	"sort"
	"strings"
)

var (
	pythonImport = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(.+)$`)
	pythonFrom   = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+([A-Za-z_][\w.]*)[ \t]+import`)

	jsRequire = regexp.MustCompile(`(?:require|import)\(\s*['"]([^'"]+)['"]\s*\)`)
	jsImport  = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:[\w{}*,$\s]+\s+from\s+)?['"]([^'"]+)['"]`)
)

// Scan statically collects the external module names an artifact references,
// excluding the language's own standard library. Names come back sorted and
// deduplicated. Languages without a registered scanner yield nothing.
func Scan(body, language string) []string {
	var referenced []string
	switch strings.ToLower(language) {
	case "python":
		referenced = scanPython(body)
	case "javascript":
		referenced = scanJavaScript(body)
	default:
		return nil
	}
	return dedupe(referenced)
}

func scanPython(body string) []string {
	var modules []string
	for _, match := range pythonImport.FindAllStringSubmatch(body, -1) {
		for _, clause := range strings.Split(match[1], ",") {
			fields := strings.Fields(clause)
			if len(fields) == 0 {
				continue
			}
			if name := pythonTopLevel(fields[0]); name != "" {
				modules = append(modules, name)
			}
		}
	}
	for _, match := range pythonFrom.FindAllStringSubmatch(body, -1) {
		if name := pythonTopLevel(match[1]); name != "" {
			modules = append(modules, name)
		}
	}
	return modules
}

func pythonTopLevel(dotted string) string {
	name := strings.SplitN(dotted, ".", 2)[0]
	if name == "" || pythonStdlib[strings.ToLower(name)] {
		return ""
	}
	return name
}

func scanJavaScript(body string) []string {
	var modules []string
	for _, re := range []*regexp.Regexp{jsRequire, jsImport} {
		for _, match := range re.FindAllStringSubmatch(body, -1) {
			if name := jsPackage(match[1]); name != "" {
				modules = append(modules, name)
			}
		}
	}
	return modules
}

// jsPackage reduces an import specifier to its installable package name:
// relative and absolute paths are skipped, scoped packages keep their scope,
// deep imports are cut at the package root.
func jsPackage(specifier string) string {
	if specifier == "" || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return ""
	}
	if strings.HasPrefix(specifier, "node:") {
		return ""
	}
	parts := strings.Split(specifier, "/")
	name := parts[0]
	if strings.HasPrefix(specifier, "@") && len(parts) > 1 {
		name = parts[0] + "/" + parts[1]
	}
	if nodeBuiltins[name] {
		return ""
	}
	return name
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var pythonStdlib = map[string]bool{
	"abc": true, "argparse": true, "array": true, "asyncio": true, "base64": true,
	"bisect": true, "builtins": true, "calendar": true, "collections": true,
	"concurrent": true, "contextlib": true, "copy": true, "csv": true, "ctypes": true,
	"dataclasses": true, "datetime": true, "decimal": true, "difflib": true,
	"email": true, "enum": true, "errno": true, "fractions": true, "functools": true,
	"gc": true, "getpass": true, "glob": true, "gzip": true, "hashlib": true,
	"heapq": true, "hmac": true, "html": true, "http": true, "importlib": true,
	"inspect": true, "io": true, "itertools": true, "json": true, "logging": true,
	"math": true, "mimetypes": true, "multiprocessing": true, "operator": true,
	"os": true, "pathlib": true, "pickle": true, "platform": true, "pprint": true,
	"queue": true, "random": true, "re": true, "secrets": true, "select": true,
	"shlex": true, "shutil": true, "signal": true, "socket": true, "sqlite3": true,
	"statistics": true, "string": true, "struct": true, "subprocess": true,
	"sys": true, "tarfile": true, "tempfile": true, "textwrap": true,
	"threading": true, "time": true, "tkinter": true, "traceback": true,
	"types": true, "typing": true, "unittest": true, "urllib": true, "uuid": true,
	"warnings": true, "weakref": true, "webbrowser": true, "xml": true,
	"zipfile": true, "zlib": true,
}

var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "cluster": true,
	"console": true, "crypto": true, "dns": true, "events": true, "fs": true,
	"http": true, "https": true, "module": true, "net": true, "os": true,
	"path": true, "process": true, "querystring": true, "readline": true,
	"stream": true, "string_decoder": true, "timers": true, "tls": true,
	"url": true, "util": true, "v8": true, "vm": true, "worker_threads": true,
	"zlib": true,
}
