package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const DefaultExportTemplate = `# Session {{session_uuid}}

**Project:** {{project_path}}
**Created:** {{created_at}}
**Tokens:** {{total_input_tokens}} in / {{total_output_tokens}} out
{{#summary}}
**Summary:** {{summary}}
{{/summary}}

{{#messages}}
## {{type}}{{#timestamp}} ({{timestamp}}){{/timestamp}}

{{#blocks}}
{{#is_text}}{{text_content}}{{/is_text}}
{{#is_thinking}}> {{text_content}}{{/is_thinking}}
{{#is_tool_use}}**Tool: {{tool_name}}**
` + "```json\n{{tool_input}}\n```" + `{{/is_tool_use}}
{{#is_tool_result}}**Result:**
` + "```\n{{text_content}}\n```" + `{{/is_tool_result}}

{{/blocks}}
{{/messages}}
`

type Config struct {
	ProjectsDir    string
	ExportTemplate string
}

type tomlConfig struct {
	ProjectsDir string `toml:"projects_dir"`
}

// Load reads config from ~/.config/cclog/
func Load() (*Config, error) {
	cfg := &Config{
		ExportTemplate: DefaultExportTemplate,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults
	}

	cfg.ProjectsDir = filepath.Join(home, ".claude", "projects")

	configDir := filepath.Join(home, ".config", "cclog")
	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "export_template.md")

	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err == nil {
			if tc.ProjectsDir != "" {
				cfg.ProjectsDir = tc.ProjectsDir
			}
		}
	}

	// If custom export template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ExportTemplate = string(data)
	}

	return cfg, nil
}
