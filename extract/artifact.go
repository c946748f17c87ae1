package extract

import (
	"strings"

	"github.com/lexcodex/incant/llm"
)

// Artifact is the normalized unit of generated code after extraction. Each
// generation turn produces a fresh artifact; edits produce a new version
// rather than rewriting history.
type Artifact struct {
	Language string
	Body     string
	Mode     llm.Mode
	Version  int
}

// NewArtifact promotes the selected segment to an artifact. The fence tag
// wins over the session language when both are present.
func NewArtifact(segment Segment, mode llm.Mode, language string) Artifact {
	lang := segment.Language
	if lang == "" {
		lang = strings.ToLower(language)
	}
	return Artifact{
		Language: lang,
		Body:     segment.Body,
		Mode:     mode,
		Version:  1,
	}
}

// WithBody returns the next version of the artifact carrying an edited body.
// The receiver is left untouched so history keeps the prior version.
func (a Artifact) WithBody(body string) Artifact {
	next := a
	next.Body = trimBlankEdges(body)
	next.Version = a.Version + 1
	return next
}

// Empty reports whether the artifact has no runnable body.
func (a Artifact) Empty() bool {
	return strings.TrimSpace(a.Body) == ""
}
