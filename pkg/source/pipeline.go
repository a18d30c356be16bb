package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/paging"
)

// WorkUnits yields the full extraction pass as one ordered stream: stage
// tag definitions, then experiments with their runs, then registered models
// with their versions. Traversal and lookup errors end the stream and are
// yielded unchanged; the caller owns any log-and-continue policy.
func (s *Source) WorkUnits(ctx context.Context) iter.Seq2[*datahub.WorkUnit, error] {
	return func(yield func(*datahub.WorkUnit, error) bool) {
		emit := func(workUnits ...*datahub.WorkUnit) bool {
			for _, workUnit := range workUnits {
				if workUnit == nil {
					continue
				}
				s.report.WorkUnits.Add(1)
				if !yield(workUnit, nil) {
					return false
				}
			}

			return true
		}
		fail := func(err error) {
			yield(nil, err)
		}

		s.log.Info("emitting stage tag definitions")
		if !emit(s.stageTagWorkUnits()...) {
			return
		}
		s.report.StageTags.Store(int64(len(registeredModelStages)))

		if !s.emitExperiments(ctx, emit, fail) {
			return
		}
		s.emitRegisteredModels(ctx, emit, fail)
	}
}

func (s *Source) emitExperiments(
	ctx context.Context,
	emit func(...*datahub.WorkUnit) bool,
	fail func(error),
) bool {
	s.log.Info("extracting experiments")

	experiments := paging.Traverse(func(token string) (*paging.Page[*entities.Experiment], error) {
		return s.client.SearchExperiments(ctx, token)
	})

	for experiment, err := range experiments {
		if err != nil {
			fail(err)

			return false
		}

		s.report.Experiments.Add(1)
		if !emit(s.experimentWorkUnits(experiment)...) {
			return false
		}

		runs := paging.Traverse(func(token string) (*paging.Page[*entities.Run], error) {
			return s.client.SearchRuns(ctx, experiment.ExperimentID, token)
		})
		for run, err := range runs {
			if err != nil {
				fail(err)

				return false
			}

			outputs, err := s.modelVersionsFromRun(ctx, run.Info.RunID)
			if err != nil {
				fail(err)

				return false
			}

			s.report.Runs.Add(1)
			if !emit(s.runWorkUnits(experiment, run, outputs)...) {
				return false
			}
		}
	}

	return true
}

func (s *Source) emitRegisteredModels(
	ctx context.Context,
	emit func(...*datahub.WorkUnit) bool,
	fail func(error),
) {
	s.log.Info("extracting registered models")

	models := paging.Traverse(func(token string) (*paging.Page[*entities.RegisteredModel], error) {
		return s.client.SearchRegisteredModels(ctx, token)
	})

	for model, err := range models {
		if err != nil {
			fail(err)

			return
		}

		s.report.RegisteredModels.Add(1)
		if !emit(s.modelGroupWorkUnit(model)) {
			return
		}

		versionSetURN := datahub.MakeVersionSetURN(model.Name, "mlModel")
		filter := fmt.Sprintf("name = '%s'", model.Name)
		versions := paging.Traverse(func(token string) (*paging.Page[*entities.ModelVersion], error) {
			return s.client.SearchModelVersions(ctx, filter, token)
		})

		seenVersions := false
		for version, err := range versions {
			if err != nil {
				fail(err)

				return
			}

			var run *entities.Run
			if version.RunID != "" {
				run, err = s.client.GetRun(ctx, version.RunID)
				if err != nil {
					fail(err)

					return
				}
			}

			seenVersions = true
			s.report.ModelVersions.Add(1)
			if !emit(s.modelVersionWorkUnits(model, version, run, versionSetURN)...) {
				return
			}
		}

		if seenVersions {
			if !emit(s.versionSetWorkUnit(model, versionSetURN)) {
				return
			}
		}
	}
}

// modelVersionsFromRun finds the versions registered from a run; only the
// first one becomes the run's output reference.
func (s *Source) modelVersionsFromRun(ctx context.Context, runID string) ([]*entities.ModelVersion, error) {
	filter := fmt.Sprintf("run_id = '%s'", runID)

	return paging.Collect(paging.Traverse(func(token string) (*paging.Page[*entities.ModelVersion], error) {
		return s.client.SearchModelVersions(ctx, filter, token)
	}))
}
