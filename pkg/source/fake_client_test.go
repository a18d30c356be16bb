package source

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/acryldata/datahub-mlflow-source/pkg/config"
	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/paging"
)

// fakeClient serves canned single-page answers; multi-page traversal is
// covered by the paging package tests.
type fakeClient struct {
	trackingURI      string
	experiments      []*entities.Experiment
	runsByExperiment map[string][]*entities.Run
	models           []*entities.RegisteredModel
	versionsByFilter map[string][]*entities.ModelVersion
	runsByID         map[string]*entities.Run

	searchCalls map[string]int
}

func (f *fakeClient) countCall(endpoint string) {
	if f.searchCalls == nil {
		f.searchCalls = map[string]int{}
	}
	f.searchCalls[endpoint]++
}

func (f *fakeClient) SearchExperiments(
	_ context.Context, _ string,
) (*paging.Page[*entities.Experiment], error) {
	f.countCall("experiments")

	return &paging.Page[*entities.Experiment]{Items: f.experiments}, nil
}

func (f *fakeClient) SearchRuns(
	_ context.Context, experimentID, _ string,
) (*paging.Page[*entities.Run], error) {
	f.countCall("runs")

	return &paging.Page[*entities.Run]{Items: f.runsByExperiment[experimentID]}, nil
}

func (f *fakeClient) SearchRegisteredModels(
	_ context.Context, _ string,
) (*paging.Page[*entities.RegisteredModel], error) {
	f.countCall("registered_models")

	return &paging.Page[*entities.RegisteredModel]{Items: f.models}, nil
}

func (f *fakeClient) SearchModelVersions(
	_ context.Context, filter, _ string,
) (*paging.Page[*entities.ModelVersion], error) {
	f.countCall("model_versions")

	return &paging.Page[*entities.ModelVersion]{Items: f.versionsByFilter[filter]}, nil
}

func (f *fakeClient) GetRun(_ context.Context, runID string) (*entities.Run, error) {
	f.countCall("get_run")

	return f.runsByID[runID], nil
}

func (f *fakeClient) TrackingURI() string {
	return f.trackingURI
}

func testConfig() *config.Config {
	return &config.Config{
		PipelineName:       "test-pipeline",
		TrackingURI:        "http://mlflow.example.com",
		ModelNameSeparator: "_",
		Env:                "PROD",
	}
}

func newTestSource(cfg *config.Config, client *fakeClient) *Source {
	if client.trackingURI == "" {
		client.trackingURI = cfg.TrackingURI
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return New(cfg, client, log)
}
