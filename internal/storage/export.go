package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportMarkdown renders a run as a markdown document.
func ExportMarkdown(run *Run) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", run.Name))
	b.WriteString(fmt.Sprintf("- **Run:** %s\n", run.ID))
	if run.LinkedInID != "" {
		b.WriteString(fmt.Sprintf("- **LinkedIn:** %s\n", run.LinkedInID))
	}
	if run.TwitterID != "" {
		b.WriteString(fmt.Sprintf("- **Twitter:** %s\n", run.TwitterID))
	}
	b.WriteString(fmt.Sprintf("- **Provider:** %s\n", run.Provider))
	b.WriteString(fmt.Sprintf("- **Model:** %s\n", run.Model))
	b.WriteString(fmt.Sprintf("- **Created:** %s\n", run.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("- **Status:** %s\n", run.Status))
	b.WriteString("\n---\n\n")

	switch {
	case run.Output != "":
		b.WriteString(run.Output)
		b.WriteString("\n")
	case run.Error != "":
		b.WriteString(fmt.Sprintf("**Error:** %s\n", run.Error))
	}

	return b.String()
}

// ExportJSON renders a run as formatted JSON.
func ExportJSON(run *Run) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}
