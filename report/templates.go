package report

const markdownTemplate = `# HAIC Evaluation Report

## Run metadata
- **run_id:** {{.RunID}}
- **session_id:** {{.SessionID}}
- **pilot_tag:** {{.PilotTag}}
- **application mode:** {{.AppMode}}
- **model:** {{.ModelName}} ({{.ModelVersion}})

## Evaluation window
- **basis:** {{.Window.Basis}}  (relative = seconds since session start; absolute = epoch/ISO)
- **requested:** {{.RequestedJSON}}
- **effective:** {{.EffectiveJSON}}
- **duration:** {{printf "%.1f" .Window.DurationS}} s
- **events used:** {{.Window.Counts.EventsUsed}} / {{.Window.Counts.EventsTotal}}
- **decisions used:** {{.Window.Counts.DecisionsUsed}} / {{.Window.Counts.DecisionsTotal}}
{{if .Window.Notes}}
**window notes**
{{range .Window.Notes}}- {{.}}
{{end}}{{end}}
## Metrics summary
| Category | Metric | Value | Notes |
|---|---:|---:|---|
| Interaction | F (frequency) | {{metric "F"}} | interactions per time window |
| Interaction | D (duration) | {{metric "D"}} | mean action duration (s) |
| Human-centeredness | HCL | {{metric "HCL"}} | normalized (rt_max={{printf "%.1f" .RTMaxS}}s) |
| Trust | Tr | {{metric "Tr"}} | proxy based on available labels |
| Adaptability | A | {{metric "A"}} | trend-based proxy |
| Similarity | S | {{metric "S"}} | policy/behavior similarity |
| Efficiency | EL | {{metric "EL"}} | overrun vs baseline |
| Efficiency | EfficiencyScore | {{metric "EfficiencyScore"}} | composite |

## Response times
- **human RT:** n={{metricInt "human_rt_n"}} mean={{metric "human_rt_mean_s"}}s p50={{metric "human_rt_p50_s"}}s p95={{metric "human_rt_p95_s"}}s
- **AI latency:** n={{metricInt "ai_latency_n"}} mean={{metric "ai_latency_mean_ms"}}ms p50={{metric "ai_latency_p50_ms"}}ms p95={{metric "ai_latency_p95_ms"}}ms

### Warnings
{{if .Warnings}}{{range .Warnings}}- {{.}}
{{end}}{{else}}- None
{{end}}
## Reproducibility
- **artifact:** {{.ArtifactPath}}
- **library version:** haicmetrics {{.Version}}
- **generated at:** {{.GeneratedAt}}
`
