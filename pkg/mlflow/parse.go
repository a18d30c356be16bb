package mlflow

import (
	"github.com/tidwall/gjson"

	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/paging"
	"github.com/acryldata/datahub-mlflow-source/pkg/utils"
)

// parsePage extracts a page of entities from a search response. A missing
// items array is an empty page, not an error; MLflow omits it when there
// are no results.
func parsePage[T any](result gjson.Result, itemsField string, parse func(gjson.Result) T) *paging.Page[T] {
	page := &paging.Page[T]{}

	for _, item := range result.Get(itemsField).Array() {
		page.Items = append(page.Items, parse(item))
	}

	if token := result.Get("next_page_token"); token.Exists() && token.String() != "" {
		page.NextPageToken = utils.PtrTo(token.String())
	}

	return page
}

// parseTags flattens MLflow's list-of-{key,value} tag encoding into a map.
func parseTags(result gjson.Result) map[string]string {
	tags := map[string]string{}
	for _, tag := range result.Array() {
		tags[tag.Get("key").String()] = tag.Get("value").String()
	}

	return tags
}

func parseExperiment(result gjson.Result) *entities.Experiment {
	return &entities.Experiment{
		ExperimentID:     result.Get("experiment_id").String(),
		Name:             result.Get("name").String(),
		ArtifactLocation: result.Get("artifact_location").String(),
		LifecycleStage:   result.Get("lifecycle_stage").String(),
		Tags:             parseTags(result.Get("tags")),
	}
}

func parseRun(result gjson.Result) *entities.Run {
	info := result.Get("info")

	run := &entities.Run{
		Info: entities.RunInfo{
			RunID:        info.Get("run_id").String(),
			RunName:      info.Get("run_name").String(),
			ExperimentID: info.Get("experiment_id").String(),
			UserID:       info.Get("user_id").String(),
			Status:       entities.RunStatus(info.Get("status").String()),
			StartTime:    info.Get("start_time").Int(),
			ArtifactURI:  info.Get("artifact_uri").String(),
		},
		Data: entities.RunData{
			Metrics: map[string]float64{},
			Params:  map[string]string{},
			Tags:    parseTags(result.Get("data.tags")),
		},
	}

	if end := info.Get("end_time"); end.Exists() && end.Int() != 0 {
		run.Info.EndTime = utils.PtrTo(end.Int())
	}

	// Metrics arrive as the latest value per key.
	for _, metric := range result.Get("data.metrics").Array() {
		run.Data.Metrics[metric.Get("key").String()] = metric.Get("value").Float()
	}
	for _, param := range result.Get("data.params").Array() {
		run.Data.Params[param.Get("key").String()] = param.Get("value").String()
	}

	return run
}

func parseRegisteredModel(result gjson.Result) *entities.RegisteredModel {
	model := &entities.RegisteredModel{
		Name:                 result.Get("name").String(),
		Description:          result.Get("description").String(),
		CreationTimestamp:    result.Get("creation_timestamp").Int(),
		LastUpdatedTimestamp: result.Get("last_updated_timestamp").Int(),
		Tags:                 parseTags(result.Get("tags")),
	}

	for _, version := range result.Get("latest_versions").Array() {
		model.LatestVersions = append(model.LatestVersions, parseModelVersion(version))
	}

	return model
}

func parseModelVersion(result gjson.Result) *entities.ModelVersion {
	version := &entities.ModelVersion{
		Name:                 result.Get("name").String(),
		Version:              result.Get("version").String(),
		RunID:                result.Get("run_id").String(),
		CurrentStage:         result.Get("current_stage").String(),
		Description:          result.Get("description").String(),
		UserID:               result.Get("user_id").String(),
		CreationTimestamp:    result.Get("creation_timestamp").Int(),
		LastUpdatedTimestamp: result.Get("last_updated_timestamp").Int(),
		Tags:                 parseTags(result.Get("tags")),
	}

	// Aliases are plain strings on model versions but {alias, version}
	// objects when echoed through registered models.
	for _, alias := range result.Get("aliases").Array() {
		if alias.IsObject() {
			version.Aliases = append(version.Aliases, alias.Get("alias").String())
		} else {
			version.Aliases = append(version.Aliases, alias.String())
		}
	}

	return version
}
