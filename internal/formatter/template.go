package formatter

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// DefaultTemplate is the name of the builtin prompt.
const DefaultTemplate = "default"

// PromptTemplate is the on-disk YAML shape of a custom prompt.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// TemplateData is exposed to prompt templates.
type TemplateData struct {
	Style string
	Diff  string
}

var builtinTemplates = map[string]string{
	DefaultTemplate: `You are a highly skilled AI specialized in generating {{.Style}} git commit messages.
Analyze the following git diff and craft a meaningful commit message that clearly summarizes the changes.
Ensure the message is succinct and formatted in one or two sentences.
Git diff:
{{.Diff}}
`,

	"conventional": `You are a highly skilled AI specialized in generating {{.Style}} git commit messages.
Analyze the following git diff and write a single commit message in the format "type(scope): description".
The type must be one of: feat, fix, docs, style, refactor, perf, test, chore.
Keep the description under 100 characters and use the imperative mood.
Git diff:
{{.Diff}}
`,
}

// BuiltinTemplateNames returns the names of the builtin prompts, sorted.
func BuiltinTemplateNames() []string {
	names := make([]string, 0, len(builtinTemplates))
	for name := range builtinTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPromptTemplate resolves a builtin name or a path to a YAML (or plain text) template file.
func GetPromptTemplate(name string) (string, error) {
	if name == "" {
		name = DefaultTemplate
	}
	if tpl, ok := builtinTemplates[name]; ok {
		return tpl, nil
	}

	content, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("prompt template %q is neither builtin (%s) nor an existing file",
				name, strings.Join(BuiltinTemplateNames(), ", "))
		}
		return "", fmt.Errorf("unable to read template file %s: %w", name, err)
	}

	var tpl PromptTemplate
	if err := yaml.Unmarshal(content, &tpl); err != nil || tpl.Template == "" {
		return string(content), nil
	}
	return tpl.Template, nil
}

func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return buf.String(), nil
}

// BuildPrompt renders the named template for a diff.
func BuildPrompt(templateName, style, diff string) (string, error) {
	content, err := GetPromptTemplate(templateName)
	if err != nil {
		return "", err
	}
	return RenderTemplate(content, TemplateData{Style: style, Diff: diff})
}
