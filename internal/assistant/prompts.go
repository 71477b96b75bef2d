package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

const systemPrompt = `You are BlueprintBuddy, an AI assistant specialized in helping users design
and understand software system architectures through visual diagrams.

You help users:
- Design system architectures
- Understand component relationships
- Generate code from diagrams
- Identify potential issues in designs
- Suggest improvements and best practices

You communicate clearly and provide actionable advice.`

const draftSystemPrompt = `You design software architecture diagrams. Given a description, respond
with a JSON object containing two arrays:
- "components": objects with "id", "name" and "type" (one of function, class, module)
- "connections": objects with "from_name" and "to_name" referencing component names

Respond with JSON only, no prose.`

// chatSystemPrompt appends a short summary of the current diagram so the
// model can ground its answers.
func chatSystemPrompt(bp *blueprint.Blueprint) string {
	if bp == nil {
		return systemPrompt
	}
	return fmt.Sprintf("%s\n\nCurrent diagram context:\n- %d components\n- %d connections",
		systemPrompt, len(bp.Components), len(bp.Connections))
}

func analyzePrompt(bp *blueprint.Blueprint) string {
	components, _ := json.MarshalIndent(bp.Components, "", "  ")
	connections, _ := json.MarshalIndent(bp.Connections, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this system design diagram:\n\n")
	fmt.Fprintf(&b, "Components (%d):\n%s\n\n", len(bp.Components), components)
	fmt.Fprintf(&b, "Connections (%d):\n%s\n\n", len(bp.Connections), connections)
	b.WriteString(`Please provide:
1. A brief description of what this system does
2. Any potential issues or improvements
3. Suggestions for missing components or connections
4. Code architecture recommendations`)
	return b.String()
}

func suggestPrompt(bp *blueprint.Blueprint) string {
	components, _ := json.MarshalIndent(bp.Components, "", "  ")
	connections, _ := json.MarshalIndent(bp.Connections, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Given these components:\n%s\n\n", components)
	fmt.Fprintf(&b, "And existing connections:\n%s\n\n", connections)
	b.WriteString("Suggest logical connections that are missing.\n")
	b.WriteString("Return as JSON array of objects with 'from', 'to', and 'reason' fields.")
	return b.String()
}

func generateCodePrompt(comp *blueprint.Component, language string) string {
	inputs, _ := json.Marshal(comp.Inputs)
	outputs, _ := json.Marshal(comp.Outputs)
	description := comp.Description
	if description == "" {
		description = "No description"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %s code for this component:\n\n", language)
	fmt.Fprintf(&b, "Name: %s\n", comp.Name)
	fmt.Fprintf(&b, "Type: %s\n", comp.Type)
	fmt.Fprintf(&b, "Inputs: %s\n", inputs)
	fmt.Fprintf(&b, "Outputs: %s\n", outputs)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	b.WriteString("Generate clean, well-documented code with type hints and docstrings.")
	return b.String()
}

func draftPrompt(prompt string, base *blueprint.Blueprint) string {
	if base == nil || len(base.Components) == 0 {
		return prompt
	}
	existing, _ := json.MarshalIndent(base.Components, "", "  ")
	return fmt.Sprintf("%s\n\nExtend this existing diagram, reusing its component names:\n%s", prompt, existing)
}
