// Package source maps MLflow entities onto DataHub aspects and drives the
// extraction pass that yields them as an ordered workunit stream.
package source

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/acryldata/datahub-mlflow-source/pkg/config"
	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
	"github.com/acryldata/datahub-mlflow-source/pkg/mlflow"
)

const (
	platform = "mlflow"

	subTypeExperiment  = "ML Experiment"
	subTypeTrainingRun = "ML Training Run"

	// attributionActor stamps version tags the connector synthesizes.
	attributionActor = "urn:li:corpuser:datahub"
)

type Source struct {
	cfg    *config.Config
	client mlflow.Client
	report *Report
	log    *logrus.Entry
}

func New(cfg *config.Config, client mlflow.Client, log *logrus.Logger) *Source {
	return &Source{
		cfg:    cfg,
		client: client,
		report: NewReport(cfg.PipelineName),
		log:    log.WithField("pipeline", cfg.PipelineName),
	}
}

func (s *Source) Report() *Report {
	return s.report
}

// baseExternalURL resolves the base for links back to the MLflow UI: the
// configured override, else the tracking endpoint when it is itself an
// HTTP(S) URL, else empty (no links).
func (s *Source) baseExternalURL() string {
	base := s.cfg.BaseExternalURL
	if base == "" {
		tracking := s.client.TrackingURI()
		if strings.HasPrefix(tracking, "http://") || strings.HasPrefix(tracking, "https://") {
			base = tracking
		}
	}

	return strings.TrimRight(base, "/")
}

func (s *Source) runExternalURL(experimentID, runID string) *string {
	base := s.baseExternalURL()
	if base == "" {
		return nil
	}

	url := base + "/#/experiments/" + experimentID + "/runs/" + runID

	return &url
}

func (s *Source) modelVersionExternalURL(name, version string) *string {
	base := s.baseExternalURL()
	if base == "" {
		return nil
	}

	url := base + "/#/models/" + name + "/versions/" + version

	return &url
}

func (s *Source) experimentContainerKey(experimentName string) datahub.ContainerKey {
	return datahub.ContainerKey{
		Platform: datahub.MakeDataPlatformURN(platform),
		ID:       experimentName,
	}
}

// modelVersionURN embeds both the registered model name and the version
// number, joined by the configured separator.
func (s *Source) modelVersionURN(name, version string) string {
	return datahub.MakeMLModelURN(platform, name+s.cfg.ModelNameSeparator+version, s.cfg.Env)
}

func (s *Source) modelGroupURN(name string) string {
	return datahub.MakeMLModelGroupURN(platform, name, s.cfg.Env)
}
