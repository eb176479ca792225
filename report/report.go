// Package report renders a computed result into the markdown session report
// consumed by downstream reviewers.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	haicmetrics "github.com/haic-lab/haicmetrics"
	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/window"
)

// Info carries rendering context not present in the result itself.
type Info struct {
	ArtifactPath string
	Version      string
	RTMaxS       float64
}

type templateData struct {
	RunID        string
	SessionID    string
	PilotTag     string
	AppMode      string
	ModelName    string
	ModelVersion string

	Window        window.Summary
	RequestedJSON string
	EffectiveJSON string
	Warnings      []string

	ArtifactPath string
	Version      string
	RTMaxS       float64
	GeneratedAt  string

	metrics map[string]float64
}

// Render produces the markdown report for one computation.
func Render(result *haicmetrics.Result, art *artifact.Artifact, info Info) (string, error) {
	if result == nil {
		return "", errors.New("result is nil")
	}

	data := &templateData{
		RunID:        "n/a",
		SessionID:    "n/a",
		PilotTag:     "n/a",
		AppMode:      "n/a",
		ModelName:    "n/a",
		ModelVersion: "n/a",

		Window:       result.WindowSummary,
		Warnings:     result.Warnings,
		ArtifactPath: info.ArtifactPath,
		Version:      info.Version,
		RTMaxS:       info.RTMaxS,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		metrics:      result.Metrics,
	}
	if data.RTMaxS <= 0 {
		data.RTMaxS = 5.0
	}
	data.RequestedJSON = compactJSON(result.WindowSummary.Requested)
	data.EffectiveJSON = compactJSON(result.WindowSummary.Effective)

	if art != nil {
		if art.RunID != "" {
			data.RunID = art.RunID
		}
		if art.SessionID != "" {
			data.SessionID = art.SessionID
		}
		fillMeta(data, art.Meta)
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"metric": func(key string) string {
			return fmt.Sprintf("%.4f", data.metrics[key])
		},
		"metricInt": func(key string) string {
			return fmt.Sprintf("%d", int64(data.metrics[key]))
		},
	}).Parse(markdownTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse report template")
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "failed to render report")
	}
	return sb.String(), nil
}

func fillMeta(data *templateData, meta map[string]any) {
	if meta == nil {
		return
	}
	if s, ok := meta["pilot_tag"].(string); ok && s != "" {
		data.PilotTag = s
	}
	if app, ok := meta["application"].(map[string]any); ok {
		if s, ok := app["mode"].(string); ok && s != "" {
			data.AppMode = s
		}
	}
	if ai, ok := meta["ai_system"].(map[string]any); ok {
		if s, ok := ai["model_name"].(string); ok && s != "" {
			data.ModelName = s
		}
		if s, ok := ai["model_version"].(string); ok && s != "" {
			data.ModelVersion = s
		}
	}
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
