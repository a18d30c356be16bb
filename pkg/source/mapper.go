package source

import (
	"maps"
	"strconv"
	"time"

	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/utils"
)

// The mappers below are pure translations from an already-fetched snapshot
// to workunits; any lookups they depend on happen in the pipeline and are
// passed in.

func (s *Source) stageTagWorkUnits() []*datahub.WorkUnit {
	workUnits := make([]*datahub.WorkUnit, 0, len(registeredModelStages))
	for _, stage := range registeredModelStages {
		tagName := stageTagName(stage.name)
		workUnits = append(workUnits, datahub.NewWorkUnit(
			datahub.MakeTagURN(tagName),
			datahub.TagProperties{
				Name:        tagName,
				Description: stage.description,
				ColorHex:    stage.colorHex,
			},
		))
	}

	return workUnits
}

func (s *Source) experimentWorkUnits(experiment *entities.Experiment) []*datahub.WorkUnit {
	urn := s.experimentContainerKey(experiment.Name).URN()

	var description *string
	if note := experiment.Note(); note != "" {
		description = &note
	}

	// The note tag becomes the description; everything else is a custom
	// property, plus the synthesized artifact location.
	customProperties := map[string]string{}
	maps.Copy(customProperties, experiment.Tags)
	delete(customProperties, entities.NoteTagKey)
	customProperties["artifacts_location"] = experiment.ArtifactLocation

	return []*datahub.WorkUnit{
		datahub.NewWorkUnit(urn, datahub.SubTypes{TypeNames: []string{subTypeExperiment}}),
		datahub.NewWorkUnit(urn, datahub.ContainerProperties{
			Name:             experiment.Name,
			Description:      description,
			CustomProperties: customProperties,
		}),
		datahub.NewWorkUnit(urn, datahub.BrowsePathsV2{Path: []datahub.BrowsePathEntry{}}),
		datahub.NewWorkUnit(urn, datahub.DataPlatformInstance{
			Platform: datahub.MakeDataPlatformURN(platform),
		}),
	}
}

func runMetrics(run *entities.Run) []datahub.MLMetric {
	metrics := make([]datahub.MLMetric, 0, len(run.Data.Metrics))
	for name, value := range run.Data.Metrics {
		metrics = append(metrics, datahub.MLMetric{
			Name:  name,
			Value: strconv.FormatFloat(value, 'g', -1, 64),
		})
	}

	return metrics
}

func runParams(run *entities.Run) []datahub.MLHyperParam {
	params := make([]datahub.MLHyperParam, 0, len(run.Data.Params))
	for name, value := range run.Data.Params {
		params = append(params, datahub.MLHyperParam{Name: name, Value: value})
	}

	return params
}

func convertRunResult(status entities.RunStatus) datahub.RunResultType {
	switch status {
	case entities.RunStatusFinished:
		return datahub.RunResultSuccess
	case entities.RunStatusFailed:
		return datahub.RunResultFailure
	default:
		return datahub.RunResultSkipped
	}
}

// runWorkUnits maps one run. outputModelVersions are the versions registered
// from this run, already looked up; only the first becomes an output
// reference.
func (s *Source) runWorkUnits(
	experiment *entities.Experiment,
	run *entities.Run,
	outputModelVersions []*entities.ModelVersion,
) []*datahub.WorkUnit {
	urn := datahub.MakeDataProcessInstanceURN(run.Info.RunID)

	name := run.Info.RunName
	if name == "" {
		name = run.Info.RunID
	}

	createdTime := run.Info.StartTime
	if createdTime == 0 {
		createdTime = time.Now().UnixMilli()
	}
	createdActor := ""
	if run.Info.UserID != "" {
		createdActor = datahub.MakePlatformResourceURN(run.Info.UserID)
	}

	customProperties := run.Data.Tags
	if customProperties == nil {
		customProperties = map[string]string{}
	}

	workUnits := []*datahub.WorkUnit{
		datahub.NewWorkUnit(urn, datahub.DataProcessInstanceProperties{
			Name:             name,
			Created:          datahub.AuditStamp{Time: createdTime, Actor: createdActor},
			ExternalURL:      s.runExternalURL(experiment.ExperimentID, run.Info.RunID),
			CustomProperties: customProperties,
		}),
		datahub.NewWorkUnit(urn, datahub.Container{
			Container: s.experimentContainerKey(experiment.Name).URN(),
		}),
	}

	if len(outputModelVersions) > 0 {
		first := outputModelVersions[0]
		workUnits = append(workUnits, datahub.NewWorkUnit(urn, datahub.DataProcessInstanceOutput{
			Outputs: []string{s.modelVersionURN(first.Name, first.Version)},
		}))
	}

	workUnits = append(workUnits, datahub.NewWorkUnit(urn, datahub.MLTrainingRunProperties{
		ID:              run.Info.RunID,
		HyperParams:     runParams(run),
		TrainingMetrics: runMetrics(run),
		OutputURLs:      []string{run.Info.ArtifactURI},
	}))

	if run.Info.EndTime != nil {
		duration := *run.Info.EndTime - run.Info.StartTime
		workUnits = append(workUnits, datahub.NewWorkUnit(urn, datahub.DataProcessInstanceRunEvent{
			TimestampMillis: *run.Info.EndTime,
			Status:          datahub.RunStatusComplete,
			Result: &datahub.DataProcessInstanceRunResult{
				Type:             convertRunResult(run.Info.Status),
				NativeResultType: platform,
			},
			DurationMillis: &duration,
		}))
	}

	workUnits = append(workUnits,
		datahub.NewWorkUnit(urn, datahub.DataPlatformInstance{
			Platform: datahub.MakeDataPlatformURN(platform),
		}),
		datahub.NewWorkUnit(urn, datahub.SubTypes{TypeNames: []string{subTypeTrainingRun}}),
	)

	return workUnits
}

// latestVersion is the registry's latest-version pointer: the first entry of
// the latest-versions list, never recomputed locally.
func latestVersion(model *entities.RegisteredModel) *entities.ModelVersion {
	if len(model.LatestVersions) == 0 {
		return nil
	}

	return model.LatestVersions[0]
}

func (s *Source) modelGroupWorkUnit(model *entities.RegisteredModel) *datahub.WorkUnit {
	var description *string
	if model.Description != "" {
		description = &model.Description
	}

	var versionTag *datahub.VersionTag
	if latest := latestVersion(model); latest != nil {
		versionTag = &datahub.VersionTag{
			VersionTag: latest.Version,
			MetadataAttribution: &datahub.MetadataAttribution{
				Time:  model.LastUpdatedTimestamp,
				Actor: attributionActor,
			},
		}
	}

	return datahub.NewWorkUnit(s.modelGroupURN(model.Name), datahub.MLModelGroupProperties{
		CustomProperties: model.Tags,
		Description:      description,
		Created:          &datahub.TimeStamp{Time: model.CreationTimestamp},
		LastModified:     &datahub.TimeStamp{Time: model.LastUpdatedTimestamp},
		Version:          versionTag,
	})
}

// modelVersionWorkUnits maps one model version. run is the version's
// training run when it has one; hyperparameters and metrics are inherited
// from it.
func (s *Source) modelVersionWorkUnits(
	model *entities.RegisteredModel,
	version *entities.ModelVersion,
	run *entities.Run,
	versionSetURN string,
) []*datahub.WorkUnit {
	urn := s.modelVersionURN(version.Name, version.Version)

	var hyperParams []datahub.MLHyperParam
	var trainingMetrics []datahub.MLMetric
	var trainingJobs []string
	if run != nil {
		hyperParams = runParams(run)
		trainingMetrics = runMetrics(run)
		trainingJobs = []string{datahub.MakeDataProcessInstanceURN(run.Info.RunID)}
	}

	var description *string
	if version.Description != "" {
		description = &version.Description
	}
	var createdActor *string
	if version.UserID != "" {
		createdActor = utils.PtrTo(datahub.MakePlatformResourceURN(version.UserID))
	}

	tags := make([]string, 0, len(version.Tags))
	for key, value := range version.Tags {
		tags = append(tags, key+":"+value)
	}

	aliases := make([]datahub.VersionTag, 0, len(version.Aliases))
	for _, alias := range version.Aliases {
		aliases = append(aliases, datahub.VersionTag{VersionTag: alias})
	}

	return []*datahub.WorkUnit{
		datahub.NewWorkUnit(urn, datahub.MLModelProperties{
			CustomProperties: version.Tags,
			ExternalURL:      s.modelVersionExternalURL(version.Name, version.Version),
			Description:      description,
			Created:          &datahub.TimeStamp{Time: version.CreationTimestamp, Actor: createdActor},
			LastModified:     &datahub.TimeStamp{Time: version.LastUpdatedTimestamp},
			HyperParams:      hyperParams,
			TrainingMetrics:  trainingMetrics,
			Tags:             tags,
			Groups:           []string{s.modelGroupURN(model.Name)},
			TrainingJobs:     trainingJobs,
		}),
		datahub.NewWorkUnit(urn, datahub.VersionProperties{
			VersionSet: versionSetURN,
			Version: datahub.VersionTag{
				VersionTag: version.Version,
				MetadataAttribution: &datahub.MetadataAttribution{
					Time:  version.CreationTimestamp,
					Actor: attributionActor,
				},
			},
			SortID:  sortID(version.Version),
			Aliases: aliases,
		}),
		datahub.NewWorkUnit(urn, datahub.GlobalTags{
			Tags: []datahub.TagAssociation{
				{Tag: datahub.MakeTagURN(stageTagName(version.CurrentStage))},
			},
		}),
	}
}

// sortID zero-pads version numbers so lexicographic ordering matches
// numeric ordering.
func sortID(version string) string {
	const width = 10
	if len(version) >= width {
		return version
	}

	padded := make([]byte, width)
	for i := range width - len(version) {
		padded[i] = '0'
	}
	copy(padded[width-len(version):], version)

	return string(padded)
}

// versionSetWorkUnit points the model's version set at the registry's
// latest version, nil when the registry reports none.
func (s *Source) versionSetWorkUnit(model *entities.RegisteredModel, versionSetURN string) *datahub.WorkUnit {
	latest := latestVersion(model)
	if latest == nil {
		return nil
	}

	return datahub.NewWorkUnit(versionSetURN, datahub.VersionSetProperties{
		Latest:           s.modelVersionURN(latest.Name, latest.Version),
		VersioningScheme: "LEXICOGRAPHIC_STRING",
	})
}
