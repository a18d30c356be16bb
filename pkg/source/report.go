package source

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Report tracks one extraction pass. Counters are atomics so the status
// server can snapshot them while the pass runs.
type Report struct {
	PipelineName string
	RunID        string
	StartedAt    time.Time

	StageTags        atomic.Int64
	Experiments      atomic.Int64
	Runs             atomic.Int64
	RegisteredModels atomic.Int64
	ModelVersions    atomic.Int64
	WorkUnits        atomic.Int64
	StaleRemoved     atomic.Int64
}

func NewReport(pipelineName string) *Report {
	return &Report{
		PipelineName: pipelineName,
		RunID:        pipelineName + "_" + uuid.NewString(),
		StartedAt:    time.Now(),
	}
}

type ReportSnapshot struct {
	PipelineName     string `json:"pipeline_name"`
	RunID            string `json:"run_id"`
	StartedAt        string `json:"started_at"`
	ElapsedSeconds   int64  `json:"elapsed_seconds"`
	StageTags        int64  `json:"stage_tags"`
	Experiments      int64  `json:"experiments"`
	Runs             int64  `json:"runs"`
	RegisteredModels int64  `json:"registered_models"`
	ModelVersions    int64  `json:"model_versions"`
	WorkUnits        int64  `json:"workunits"`
	StaleRemoved     int64  `json:"stale_removed"`
}

func (r *Report) Snapshot() ReportSnapshot {
	return ReportSnapshot{
		PipelineName:     r.PipelineName,
		RunID:            r.RunID,
		StartedAt:        r.StartedAt.UTC().Format(time.RFC3339),
		ElapsedSeconds:   int64(time.Since(r.StartedAt).Seconds()),
		StageTags:        r.StageTags.Load(),
		Experiments:      r.Experiments.Load(),
		Runs:             r.Runs.Load(),
		RegisteredModels: r.RegisteredModels.Load(),
		ModelVersions:    r.ModelVersions.Load(),
		WorkUnits:        r.WorkUnits.Load(),
		StaleRemoved:     r.StaleRemoved.Load(),
	}
}

func (r *Report) JSON() []byte {
	data, _ := json.Marshal(r.Snapshot())

	return data
}
