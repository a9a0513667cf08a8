package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// pipelineTemplate renders the definition consumed by the run command.
// Column overrides are added by hand after deployment when board column
// titles don't match the destination table.
const pipelineTemplate = `# Generated for board {{ .BoardID }} ({{ .Name }}). Safe to edit.
name: {{ .Key }}
board_id: "{{ .BoardID }}"
table: {{ .Table }}
key_column: {{ .KeyColumn }}
`

// workflowTemplate renders the Kestra flow that schedules the sync.
const workflowTemplate = `id: {{ .Key }}
namespace: data.orchestration
description: Sync monday.com board {{ .BoardID }} ({{ .Name }}) into {{ .Table }}

tasks:
  - id: sync
    type: io.kestra.plugin.scripts.shell.Commands
    commands:
      - mondaysync run --config pipelines/{{ .Key }}.yaml

triggers:
  - id: schedule
    type: io.kestra.plugin.core.trigger.Schedule
    cron: "{{ .Schedule }}"
`

type templateData struct {
	*Entry
	Key string
}

func (r *Registry) render(e *Entry) error {
	data := templateData{Entry: e, Key: e.Key()}
	if data.Key == "" {
		return fmt.Errorf("board name %q produces an empty file name", e.Name)
	}

	files := []struct {
		path string
		tmpl string
	}{
		{e.PipelineFile, pipelineTemplate},
		{e.WorkflowFile, workflowTemplate},
	}
	for _, f := range files {
		target := filepath.Join(r.dir, f.path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		tmpl, err := template.New(filepath.Base(f.path)).Parse(f.tmpl)
		if err != nil {
			return fmt.Errorf("failed to parse template: %w", err)
		}

		out, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		if err := tmpl.Execute(out, data); err != nil {
			out.Close()
			return fmt.Errorf("failed to render %s: %w", f.path, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}
