package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"dockergen/internal/capabilities"
	"dockergen/internal/tree"
)

const systemPrompt = "You write production-ready Dockerfiles. Reply with the Dockerfile only."

var promptTemplate = strings.TrimSpace(dedent.Dedent(`
	Generate a dockerfile for a %s project with the following structure:
	%s
	just give me the dockerfile without explanation`))

var hintTemplate = strings.TrimSpace(dedent.Dedent(`
	Hints:
	- a suitable base image is %s
	- files that usually identify this language: %s`))

// BuildPrompt renders the user prompt for a language and serialized
// structure. The structure is embedded as indented JSON; lang adds optional
// catalog hints and rendered adds the text tree when non-empty.
func BuildPrompt(language string, structure tree.Structure, lang *capabilities.Language, rendered string) (string, error) {
	payload, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode structure: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptTemplate, language, payload)

	if rendered != "" {
		b.WriteString("\n\nDirectory layout:\n")
		b.WriteString(rendered)
	}

	if lang != nil && lang.BaseImage != "" {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, hintTemplate, lang.BaseImage, strings.Join(lang.Manifests, ", "))
	}

	return b.String(), nil
}
