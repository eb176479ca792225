// Package sessionlog is the producing collaborator: it records decision and
// event streams during an annotation session and exports the decisions
// artifact the metric engine consumes.
package sessionlog

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

const (
	schemaVersion         = "1.0"
	decisionSchemaVersion = "1.0"
	eventsSchemaVersion   = "1.0"
	artifactSchemaName    = "haic.decisions_artifact"
)

// Config describes the session being logged. Zero values get sane defaults.
type Config struct {
	LogDir     string
	PilotTag   string
	AppName    string
	AppVersion string
	AppMode    string

	ModelName    string
	ModelType    string
	ModelVersion string

	Task  map[string]any
	Human map[string]any

	Logger *slog.Logger
}

// Logger accumulates one session's decisions and events. Events are also
// appended to a JSONL file as they happen, so a crash still leaves a trail.
// Safe for concurrent use.
type Logger struct {
	mu sync.Mutex

	cfg       Config
	sessionID string
	runID     string

	startTime float64
	endTime   *float64

	eventSeq    int
	decisionSeq int
	events      []map[string]any
	decisions   []map[string]any
	machine     map[string]any

	slog *slog.Logger
}

// New starts a session: ids are assigned, the machine snapshot captured, and
// a session_start event emitted.
func New(cfg Config) (*Logger, error) {
	if cfg.LogDir == "" {
		cfg.LogDir = "."
	}
	if cfg.PilotTag == "" {
		cfg.PilotTag = "unspecified"
	}
	if cfg.AppName == "" {
		cfg.AppName = "haicmetrics"
	}
	if cfg.Task == nil {
		cfg.Task = map[string]any{"name": "unknown_task", "domain": "unknown_domain", "unit_of_work": "item"}
	}
	if cfg.Human == nil {
		cfg.Human = map[string]any{"actor_id": nil, "role": "human", "expertise": "unknown"}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	l := &Logger{
		cfg:       cfg,
		sessionID: shortuuid.New(),
		runID:     uuid.NewString(),
		startTime: nowEpoch(),
		machine:   machineSnapshot(),
		slog:      cfg.Logger,
	}

	if _, err := l.LogEvent("session_start", "system", map[string]any{
		"pilot_tag": cfg.PilotTag,
		"app_mode":  cfg.AppMode,
	}); err != nil {
		return nil, err
	}
	return l, nil
}

// SessionID returns the compact session identifier.
func (l *Logger) SessionID() string { return l.sessionID }

// RunID returns the run identifier used in output filenames.
func (l *Logger) RunID() string { return l.runID }

// EventsPath is the JSONL file events are appended to.
func (l *Logger) EventsPath() string {
	return filepath.Join(l.cfg.LogDir, "run_"+l.runID+".jsonl")
}

// DecisionsPath is the default artifact destination.
func (l *Logger) DecisionsPath() string {
	return filepath.Join(l.cfg.LogDir, "haic_decisions_"+l.runID+".json")
}

// LogEvent records a diagnostic event and appends it to the JSONL trail.
func (l *Logger) LogEvent(eventType, actor string, payload map[string]any) (map[string]any, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	l.mu.Lock()
	l.eventSeq++
	event := map[string]any{
		"schema_version": eventsSchemaVersion,
		"event_id":       uuid.NewString(),
		"event_type":     eventType,
		"t":              nowEpoch(),
		"seq":            l.eventSeq,
		"actor":          actor,
		"context": map[string]any{
			"run_id":     l.runID,
			"session_id": l.sessionID,
			"pilot_tag":  l.cfg.PilotTag,
			"app_mode":   l.cfg.AppMode,
		},
		"payload": payload,
	}
	l.events = append(l.events, event)
	l.mu.Unlock()

	if err := AppendJSONL(l.EventsPath(), event); err != nil {
		l.slog.Warn("failed to append event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return event, err
	}
	return event, nil
}

// DecisionEntry is the caller-facing shape of one decision to record.
type DecisionEntry struct {
	ActorType string
	Action    string
	ObjectID  string
	DurationS *float64
	LatencyMS *float64
	Correct   *bool
	T         *float64
	Payload   map[string]any
}

// LogDecision appends one decision record to the in-memory stream.
func (l *Logger) LogDecision(entry DecisionEntry) map[string]any {
	t := nowEpoch()
	if entry.T != nil {
		t = *entry.T
	}
	payload := entry.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisionSeq++
	row := map[string]any{
		"schema_version": decisionSchemaVersion,
		"seq":            l.decisionSeq,
		"t":              t,
		"actor_type":     entry.ActorType,
		"action":         entry.Action,
		"object_id":      entry.ObjectID,
		"payload":        payload,
	}
	if entry.DurationS != nil {
		row["duration_s"] = *entry.DurationS
	}
	if entry.LatencyMS != nil {
		row["latency_ms"] = *entry.LatencyMS
	}
	if entry.Correct != nil {
		row["correct"] = *entry.Correct
	}
	l.decisions = append(l.decisions, row)
	return row
}

// ExportArtifact assembles the decisions artifact in the shape the metric
// engine consumes.
func (l *Logger) ExportArtifact() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	var endTime any
	if l.endTime != nil {
		endTime = *l.endTime
	}

	return map[string]any{
		"artifact_schema": artifactSchemaName,
		"schema_version":  decisionSchemaVersion,
		"session_id":      l.sessionID,
		"run_id":          l.runID,
		"meta": map[string]any{
			"pilot_tag": l.cfg.PilotTag,
			"application": map[string]any{
				"name":    l.cfg.AppName,
				"version": l.cfg.AppVersion,
				"mode":    l.cfg.AppMode,
			},
			"ai_system": map[string]any{
				"model_name":    l.cfg.ModelName,
				"model_type":    l.cfg.ModelType,
				"model_version": l.cfg.ModelVersion,
			},
			"task":           l.cfg.Task,
			"human":          l.cfg.Human,
			"infrastructure": l.machine,
			"timestamps": map[string]any{
				"start_time": l.startTime,
				"end_time":   endTime,
			},
		},
		"decisions": append([]map[string]any(nil), l.decisions...),
		"events":    append([]map[string]any(nil), l.events...),
	}
}

// WriteArtifact exports to disk; an empty path uses DecisionsPath.
func (l *Logger) WriteArtifact(path string) (string, error) {
	if path == "" {
		path = l.DecisionsPath()
	}
	if err := WriteJSON(path, l.ExportArtifact()); err != nil {
		return "", err
	}
	return path, nil
}

// Close stamps the end time and emits the session_end event. Idempotent.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.endTime != nil {
		l.mu.Unlock()
		return
	}
	end := nowEpoch()
	l.endTime = &end
	l.mu.Unlock()

	if _, err := l.LogEvent("session_end", "system", map[string]any{"session_end_time": end}); err != nil {
		l.slog.Warn("failed to log session_end", slog.String("error", err.Error()))
	}
}

func nowEpoch() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// machineSnapshot captures the coarse host facts carried in run metadata.
// Deeper resource telemetry belongs to an external sampler, not here.
func machineSnapshot() map[string]any {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return map[string]any{
		"hostname":  hostname,
		"os":        runtime.GOOS + " " + runtime.GOARCH,
		"cpu_count": runtime.NumCPU(),
	}
}
