package tasks

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
)

const promptText = `You are an expert curriculum assistant. Your task is to generate a welcoming, introductory message for a student about a specific syllabus module. This message should also include 2-4 distinct learning tasks and 2-3 real-world applications based on the provided content.

Syllabus Module Content:
"{{.ModuleContent}}"

Guidelines:
1.  Start with a friendly greeting.
2.  Generate a section with 2 to 4 distinct learning tasks. Use markdown lists.
3.  Generate a section describing 2 to 3 real-world applications of the module's concepts. Use markdown lists.
4.  Combine all of this into a single, cohesive response string.
`

// text/template does not escape, so module content lands in the prompt verbatim.
var modulePrompt = template.Must(template.New("generateModuleTasksPrompt").Parse(promptText))

func buildPrompt(input models.GenerateModuleTasksInput) (string, error) {
	var buf bytes.Buffer
	if err := modulePrompt.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}
