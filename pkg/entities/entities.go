// Package entities holds read-only snapshots of MLflow tracking and model
// registry objects as returned by the REST API. Nothing here is ever
// mutated locally.
package entities

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusScheduled RunStatus = "SCHEDULED"
	RunStatusFinished  RunStatus = "FINISHED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusKilled    RunStatus = "KILLED"
)

// NoteTagKey is the reserved MLflow tag carrying a free-text description.
const NoteTagKey = "mlflow.note.content"

type Experiment struct {
	ExperimentID     string
	Name             string
	ArtifactLocation string
	LifecycleStage   string
	Tags             map[string]string
}

// Note returns the experiment description tag, empty when absent.
func (e *Experiment) Note() string {
	return e.Tags[NoteTagKey]
}

type RunInfo struct {
	RunID        string
	RunName      string
	ExperimentID string
	UserID       string
	Status       RunStatus
	StartTime    int64
	EndTime      *int64
	ArtifactURI  string
}

type RunData struct {
	Metrics map[string]float64
	Params  map[string]string
	Tags    map[string]string
}

type Run struct {
	Info RunInfo
	Data RunData
}

type RegisteredModel struct {
	Name                 string
	Description          string
	CreationTimestamp    int64
	LastUpdatedTimestamp int64
	Tags                 map[string]string

	// LatestVersions holds one entry per lifecycle stage, in the ordering
	// the registry returns. The first entry is the registry's notion of the
	// latest version and is never recomputed locally.
	LatestVersions []*ModelVersion
}

type ModelVersion struct {
	Name                 string
	Version              string
	RunID                string
	CurrentStage         string
	Description          string
	UserID               string
	CreationTimestamp    int64
	LastUpdatedTimestamp int64
	Tags                 map[string]string
	Aliases              []string
}
