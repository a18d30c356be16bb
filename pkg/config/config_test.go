package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acryldata/datahub-mlflow-source/pkg/config"
	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mlflow-source.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"pipeline_name": "prod-mlflow",
		"tracking_uri": "http://mlflow:5000",
		"emitter": {"mode": "rest", "server_url": "http://datahub-gms:8080"}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "_", cfg.ModelNameSeparator)
	assert.Equal(t, "PROD", cfg.Env)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, "http://mlflow:5000", cfg.EffectiveRegistryURI())
}

func TestLoadParsesDurationStrings(t *testing.T) {
	path := writeConfig(t, `{
		"pipeline_name": "p",
		"tracking_uri": "http://mlflow:5000",
		"request_timeout": "90s",
		"registry_uri": "http://registry:5000",
		"emitter": {"mode": "file", "path": "out.json"}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.RequestTimeout.Duration)
	assert.Equal(t, "http://registry:5000", cfg.EffectiveRegistryURI())
}

func TestValidation(t *testing.T) {
	scenarios := []struct {
		name    string
		content string
	}{
		{
			name:    "missing pipeline name",
			content: `{"tracking_uri": "http://mlflow:5000", "emitter": {"mode": "file", "path": "o"}}`,
		},
		{
			name:    "missing tracking uri",
			content: `{"pipeline_name": "p", "emitter": {"mode": "file", "path": "o"}}`,
		},
		{
			name: "bad emitter mode",
			content: `{"pipeline_name": "p", "tracking_uri": "http://m:5000",
				"emitter": {"mode": "kafka"}}`,
		},
		{
			name: "rest mode without server url",
			content: `{"pipeline_name": "p", "tracking_uri": "http://m:5000",
				"emitter": {"mode": "rest"}}`,
		},
		{
			name: "file mode without path",
			content: `{"pipeline_name": "p", "tracking_uri": "http://m:5000",
				"emitter": {"mode": "file"}}`,
		},
		{
			name: "bad env",
			content: `{"pipeline_name": "p", "tracking_uri": "http://m:5000", "env": "LUNAR",
				"emitter": {"mode": "file", "path": "o"}}`,
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, scenario.content))
			require.Error(t, err)
			assert.Equal(t, contract.ErrorCodeInvalidConfig, contract.CodeOf(err))
		})
	}
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "MLFLOW_SOURCE_TRACKING_URI", config.EnvVarName("TrackingURI"))
	assert.Equal(t, "MLFLOW_SOURCE_MODEL_NAME_SEPARATOR", config.EnvVarName("ModelNameSeparator"))
	assert.Equal(t, "MLFLOW_SOURCE_BASE_EXTERNAL_URL", config.EnvVarName("BaseExternalURL"))
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := &config.Config{TrackingURI: "http://from-file:5000", ModelNameSeparator: "_"}

	env := map[string]string{
		"MLFLOW_SOURCE_TRACKING_URI":         "http://from-env:5000",
		"MLFLOW_SOURCE_MODEL_NAME_SEPARATOR": "-",
	}
	config.ApplyEnvOverrides(cfg, func(name string) (string, bool) {
		value, ok := env[name]

		return value, ok
	})

	assert.Equal(t, "http://from-env:5000", cfg.TrackingURI)
	assert.Equal(t, "-", cfg.ModelNameSeparator)
	// Untouched fields keep their file values.
	assert.Equal(t, "", cfg.PipelineName)
}

func TestSeparatorIsNotValidated(t *testing.T) {
	// A separator colliding with characters in model names is a documented
	// correctness gap, not a validation error.
	path := writeConfig(t, `{
		"pipeline_name": "p",
		"tracking_uri": "http://m:5000",
		"model_name_separator": "_",
		"emitter": {"mode": "file", "path": "o"}
	}`)

	_, err := config.Load(path)
	require.NoError(t, err)
}
