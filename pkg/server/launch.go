package server

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/acryldata/datahub-mlflow-source/pkg/config"
	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
	"github.com/acryldata/datahub-mlflow-source/pkg/mlflow"
	"github.com/acryldata/datahub-mlflow-source/pkg/source"
	"github.com/acryldata/datahub-mlflow-source/pkg/state"
)

// Launch runs one extraction pass to completion. When a status address is
// configured the status server runs alongside and stops once the pass ends.
func Launch(ctx context.Context, cfg *config.Config, log *logrus.Logger, version string) error {
	client := mlflow.NewRestClient(
		cfg.TrackingURI,
		cfg.EffectiveRegistryURI(),
		cfg.PageSize,
		cfg.RequestTimeout.Duration,
	)
	src := source.New(cfg, client, log)

	if cfg.StatusAddress == "" {
		return runPipeline(ctx, cfg, src, log)
	}

	var pipelineErr error
	var wg sync.WaitGroup

	srvCtx, srvCancel := context.WithCancel(ctx)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := launchStatusServer(srvCtx, cfg.StatusAddress, version, src.Report(), log); err != nil &&
			srvCtx.Err() == nil {
			log.Errorf("status server failed: %v", err)
		}
	}()

	pipelineErr = runPipeline(ctx, cfg, src, log)
	srvCancel()
	wg.Wait()

	return pipelineErr
}

func newEmitter(cfg *config.Config) (datahub.Emitter, error) {
	if cfg.Emitter.Mode == "file" {
		return datahub.NewFileEmitter(cfg.Emitter.Path)
	}

	return datahub.NewRESTEmitter(cfg.Emitter.ServerURL, cfg.Emitter.Token, cfg.RequestTimeout.Duration), nil
}

func runPipeline(ctx context.Context, cfg *config.Config, src *source.Source, log *logrus.Logger) error {
	emitter, err := newEmitter(cfg)
	if err != nil {
		return err
	}
	defer emitter.Close()

	var stateStore *state.Store
	var previous map[string]struct{}
	if cfg.StateStoreURL != "" {
		stateStore, err = state.NewStore(cfg.StateStoreURL, cfg.PipelineName, log)
		if err != nil {
			return err
		}
		defer stateStore.Close()

		previous, err = stateStore.PreviousURNs(ctx)
		if err != nil {
			return err
		}
	}

	report := src.Report()
	log.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"tracking": cfg.TrackingURI,
	}).Info("starting extraction pass")

	var emitted []string
	for workUnit, err := range src.WorkUnits(ctx) {
		if err != nil {
			return err
		}

		if err := emitter.Emit(ctx, workUnit.Proposal); err != nil {
			return err
		}
		emitted = append(emitted, workUnit.Proposal.EntityURN)

		if ctx.Err() != nil {
			return contract.NewErrorf(contract.ErrorCodeInternal, "extraction cancelled: %v", ctx.Err())
		}
	}

	if stateStore != nil {
		if err := removeStale(ctx, emitter, previous, emitted, report, log); err != nil {
			return err
		}
		if err := stateStore.RecordPass(ctx, report.RunID, emitted); err != nil {
			return err
		}
	}

	snapshot := report.Snapshot()
	log.WithFields(logrus.Fields{
		"workunits":         snapshot.WorkUnits,
		"experiments":       snapshot.Experiments,
		"runs":              snapshot.Runs,
		"registered_models": snapshot.RegisteredModels,
		"model_versions":    snapshot.ModelVersions,
		"stale_removed":     snapshot.StaleRemoved,
	}).Info("extraction pass finished")

	return nil
}

// removeStale soft-deletes every URN the previous pass emitted that this
// pass did not.
func removeStale(
	ctx context.Context,
	emitter datahub.Emitter,
	previous map[string]struct{},
	emitted []string,
	report *source.Report,
	log *logrus.Logger,
) error {
	for _, urn := range state.Stale(previous, emitted) {
		log.WithField("urn", urn).Info("soft-deleting stale entity")
		if err := emitter.Emit(ctx, datahub.NewProposal(urn, datahub.Status{Removed: true})); err != nil {
			return err
		}
		report.StaleRemoved.Add(1)
	}

	return nil
}
