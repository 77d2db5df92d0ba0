package rawpayload

import "time"

// Payload is an audit record of one raw provider or results-source response,
// kept for incident forensics. Nothing in the pipeline reads these back;
// they exist purely as a write-once trail.
type Payload struct {
	Source          string // "odds_provider" | "results_source"
	EntityType      string // e.g. "nhl_odds", "nhl_scoreboard"
	EntityKey       string // e.g. sport name or job_run_id
	PayloadJSON     []byte
	PayloadHash     string // sha256 hex of PayloadJSON
	SourceUpdatedAt time.Time
}
