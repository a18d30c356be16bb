package source

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/paging"
)

func collectWorkUnits(t *testing.T, src *Source) []*datahub.WorkUnit {
	t.Helper()

	var workUnits []*datahub.WorkUnit
	for workUnit, err := range src.WorkUnits(context.Background()) {
		require.NoError(t, err)
		workUnits = append(workUnits, workUnit)
	}

	return workUnits
}

func fullFixture() *fakeClient {
	experiment := &entities.Experiment{
		ExperimentID:     "1",
		Name:             "churn-model",
		ArtifactLocation: "s3://bucket/1",
		Tags:             map[string]string{"team": "ml"},
	}

	modelVersion3 := &entities.ModelVersion{
		Name: "m", Version: "3", RunID: "r1", CurrentStage: "Production",
	}
	modelVersion1 := &entities.ModelVersion{
		Name: "m", Version: "1", CurrentStage: "Staging",
	}

	return &fakeClient{
		experiments: []*entities.Experiment{experiment},
		runsByExperiment: map[string][]*entities.Run{
			"1": {finishedRun()},
		},
		models: []*entities.RegisteredModel{{
			Name:           "m",
			LatestVersions: []*entities.ModelVersion{modelVersion3, modelVersion1},
		}},
		versionsByFilter: map[string][]*entities.ModelVersion{
			"name = 'm'":    {modelVersion1, modelVersion3},
			"run_id = 'r1'": {modelVersion3},
		},
		runsByID: map[string]*entities.Run{"r1": finishedRun()},
	}
}

func TestWorkUnitsFullPass(t *testing.T) {
	client := fullFixture()
	src := newTestSource(testConfig(), client)

	workUnits := collectWorkUnits(t, src)

	assert.Equal(t, []string{
		// phase 1: stage tag definitions
		"tagProperties", "tagProperties", "tagProperties", "tagProperties",
		// phase 2: experiment container, then its run
		"subTypes", "containerProperties", "browsePathsV2", "dataPlatformInstance",
		"dataProcessInstanceProperties", "container", "dataProcessInstanceOutput",
		"mlTrainingRunProperties", "dataProcessInstanceRunEvent",
		"dataPlatformInstance", "subTypes",
		// phase 3: model group, versions, version set
		"mlModelGroupProperties",
		"mlModelProperties", "versionProperties", "globalTags",
		"mlModelProperties", "versionProperties", "globalTags",
		"versionSetProperties",
	}, aspectNames(workUnits))

	report := src.Report().Snapshot()
	assert.Equal(t, int64(4), report.StageTags)
	assert.Equal(t, int64(1), report.Experiments)
	assert.Equal(t, int64(1), report.Runs)
	assert.Equal(t, int64(1), report.RegisteredModels)
	assert.Equal(t, int64(2), report.ModelVersions)
	assert.Equal(t, int64(len(workUnits)), report.WorkUnits)

	// The run's output reference and the version set's latest pointer both
	// land on the version registered from the run.
	var outputs []string
	for _, workUnit := range workUnits {
		if aspect, ok := workUnit.Proposal.Aspect.(datahub.DataProcessInstanceOutput); ok {
			outputs = aspect.Outputs
		}
	}
	assert.Equal(t, []string{"urn:li:mlModel:(urn:li:dataPlatform:mlflow,m_3,PROD)"}, outputs)

	last := workUnits[len(workUnits)-1]
	assert.Equal(t, "urn:li:versionSet:(m,mlModel)", last.Proposal.EntityURN)
	assert.Equal(
		t,
		"urn:li:mlModel:(urn:li:dataPlatform:mlflow,m_3,PROD)",
		last.Proposal.Aspect.(datahub.VersionSetProperties).Latest,
	)

	// One run lookup per model version with a run id.
	assert.Equal(t, 1, client.searchCalls["get_run"])
}

func TestWorkUnitsRepeatedPassesAreIdempotent(t *testing.T) {
	first := collectWorkUnits(t, newTestSource(testConfig(), fullFixture()))
	second := collectWorkUnits(t, newTestSource(testConfig(), fullFixture()))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Proposal.EntityURN, second[i].Proposal.EntityURN)
		assert.Equal(t, first[i].Proposal.AspectName, second[i].Proposal.AspectName)
	}
}

func TestWorkUnitsModelWithoutVersionsEmitsNoVersionSet(t *testing.T) {
	client := fullFixture()
	client.versionsByFilter["name = 'm'"] = nil

	workUnits := collectWorkUnits(t, newTestSource(testConfig(), client))

	names := aspectNames(workUnits)
	assert.Contains(t, names, "mlModelGroupProperties")
	assert.NotContains(t, names, "versionSetProperties")
	assert.NotContains(t, names, "versionProperties")
}

type failingClient struct {
	fakeClient
	err error
}

func (f *failingClient) SearchRuns(
	_ context.Context, _, _ string,
) (*paging.Page[*entities.Run], error) {
	return nil, f.err
}

func TestWorkUnitsPropagatesTraversalError(t *testing.T) {
	client := &failingClient{fakeClient: *fullFixture(), err: errors.New("tracking server down")}
	client.trackingURI = "http://mlflow.example.com"

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	src := New(testConfig(), client, log)

	var got error
	var count int
	for _, err := range src.WorkUnits(context.Background()) {
		if err != nil {
			got = err

			break
		}
		count++
	}

	require.ErrorIs(t, got, client.err)
	// Stage tags and the experiment records were already delivered.
	assert.Equal(t, 8, count)
}
