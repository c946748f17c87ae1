package session

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const maxContextFileSize = 50000

var fileNamePattern = regexp.MustCompile(`[\w\-.:/\\]*[\w\-]+\.\w+`)

var contextFileExtensions = map[string]bool{
	".json": true, ".csv": true, ".xml": true, ".xls": true,
	".txt": true, ".md": true, ".html": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
}

// promptAddenda assembles the extra prompt lines for one instruction: inlined
// file data when the instruction names a readable file and asks for analysis,
// then rendering hints for graph, chart, and table requests.
func promptAddenda(instruction, language, workdir string) []string {
	var addenda []string
	lower := strings.ToLower(instruction)

	if data, ok := fileContext(instruction, workdir); ok && wantsVisualization(lower) {
		addenda = append(addenda, "This is file data from user input: "+data+" use this to analyze the data.")
	}

	if strings.Contains(lower, "graph") {
		switch language {
		case "python":
			addenda = append(addenda, "using Python use Matplotlib save the graph in file called 'graph.png'")
		case "javascript":
			addenda = append(addenda, "using JavaScript use Chart.js save the graph in file called 'graph.png'")
		}
	}
	if strings.Contains(lower, "chart") || strings.Contains(lower, "plot") {
		switch language {
		case "python":
			addenda = append(addenda, "using Python use Plotly save the chart in file called 'chart.png'")
		case "javascript":
			addenda = append(addenda, "using JavaScript use Chart.js save the chart in file called 'chart.png'")
		}
	}
	if strings.Contains(lower, "table") {
		switch language {
		case "python":
			addenda = append(addenda, "using Python use Pandas save the table in file called 'table.md'")
		case "javascript":
			addenda = append(addenda, "using JavaScript use DataTables save the table in file called 'table.html'")
		}
	}
	return addenda
}

func wantsVisualization(lower string) bool {
	return strings.Contains(lower, "graph") || strings.Contains(lower, "chart")
}

// extractFileName pulls the first file-looking token with a known extension
// out of an instruction. URLs are returned as-is so vision turns can pass
// them through.
func extractFileName(instruction string) string {
	for _, match := range fileNamePattern.FindAllString(instruction, -1) {
		ext := strings.ToLower(filepath.Ext(match))
		if contextFileExtensions[ext] {
			return match
		}
	}
	return ""
}

func isURL(name string) bool {
	return strings.Contains(name, "http") || strings.Contains(name, "www.")
}

// fileContext reads the file an instruction names, capped at 50 KB. JSON and
// XML files contribute their first 20 lines, CSV files only their header row.
func fileContext(instruction, workdir string) (string, bool) {
	name := extractFileName(instruction)
	if name == "" || isURL(name) {
		return "", false
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workdir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() >= maxContextFileSize {
		return "", false
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".xml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		lines := strings.Split(string(raw), "\n")
		if len(lines) > 20 {
			lines = lines[:20]
		}
		return strings.Join(lines, "\n"), true
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return "", false
		}
		defer file.Close()
		headers, err := csv.NewReader(file).Read()
		if err != nil {
			return "", false
		}
		return strings.Join(headers, ", "), true
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}
