package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"

	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
)

// EnvPrefix is prepended to the screaming-snake field name when looking up
// environment overrides, e.g. TrackingURI -> MLFLOW_SOURCE_TRACKING_URI.
const EnvPrefix = "MLFLOW_SOURCE_"

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		if err != nil {
			return err
		}
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

type EmitterConfig struct {
	// Mode selects where proposals go: "rest" posts them to a DataHub GMS,
	// "file" writes newline-delimited JSON to Path.
	Mode      string `json:"mode"       validate:"oneof=rest file"`
	ServerURL string `json:"server_url" validate:"omitempty,url"`
	Token     string `json:"token"`
	Path      string `json:"path"`
}

type Config struct {
	PipelineName string `json:"pipeline_name" validate:"required"`

	// TrackingURI is the MLflow tracking server. Not necessarily an HTTP
	// URL (external links are only derived from it when it is one).
	// RegistryURI falls back to TrackingURI when empty.
	TrackingURI string `json:"tracking_uri" validate:"required"`
	RegistryURI string `json:"registry_uri"`

	// ModelNameSeparator joins a registered model name and a version number
	// into a model URN id (e.g. model_1). Names already containing the
	// separator can produce ambiguous ids; this is not validated.
	ModelNameSeparator string `json:"model_name_separator"`

	// BaseExternalURL overrides the base for links back to the MLflow UI.
	// When empty, TrackingURI is used if it is an HTTP(S) URL; otherwise no
	// external links are generated.
	BaseExternalURL string `json:"base_external_url" validate:"omitempty,url"`

	Env            string   `json:"env" validate:"oneof=PROD DEV QA TEST EI CORP NON_PROD"`
	PageSize       int      `json:"page_size" validate:"gt=0"`
	RequestTimeout Duration `json:"request_timeout"`
	LogLevel       string   `json:"log_level"`

	// StateStoreURL enables stateful ingestion (stale entity removal) when
	// set. Scheme selects the backend: sqlite file path, postgres://,
	// mysql://, sqlserver://.
	StateStoreURL string `json:"state_store_url"`

	// StatusAddress serves /health, /version and /report while a pass runs.
	// Empty disables the status server.
	StatusAddress string `json:"status_address"`

	Emitter EmitterConfig `json:"emitter"`
}

func defaults() Config {
	return Config{
		ModelNameSeparator: "_",
		Env:                "PROD",
		PageSize:           100,
		RequestTimeout:     Duration{30 * time.Second},
		LogLevel:           "info",
		Emitter:            EmitterConfig{Mode: "rest"},
	}
}

// Load reads the JSON config file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeInvalidConfig, "failed to read config file: %v", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeInvalidConfig, "failed to parse config file %q: %v", path, err)
	}

	ApplyEnvOverrides(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnvOverrides sets every top-level string field from
// MLFLOW_SOURCE_<SCREAMING_SNAKE(field)> when present.
func ApplyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	value := reflect.ValueOf(cfg).Elem()
	for i := range value.NumField() {
		field := value.Type().Field(i)
		if field.Type.Kind() != reflect.String {
			continue
		}
		if env, ok := lookup(EnvVarName(field.Name)); ok {
			value.Field(i).SetString(env)
		}
	}
}

func EnvVarName(fieldName string) string {
	return EnvPrefix + strcase.ToScreamingSnake(fieldName)
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return contract.NewErrorf(
				contract.ErrorCodeInvalidConfig,
				"invalid config: field %q failed on the %q rule",
				first.Field(), first.Tag(),
			)
		}

		return contract.NewErrorf(contract.ErrorCodeInvalidConfig, "invalid config: %v", err)
	}

	if c.Emitter.Mode == "rest" && c.Emitter.ServerURL == "" {
		return contract.NewError(contract.ErrorCodeInvalidConfig, "emitter.server_url is required in rest mode")
	}
	if c.Emitter.Mode == "file" && c.Emitter.Path == "" {
		return contract.NewError(contract.ErrorCodeInvalidConfig, "emitter.path is required in file mode")
	}

	return nil
}

// EffectiveRegistryURI is where registered models and versions are searched.
func (c *Config) EffectiveRegistryURI() string {
	if c.RegistryURI != "" {
		return c.RegistryURI
	}

	return c.TrackingURI
}

func (c *Config) String() string {
	return fmt.Sprintf("pipeline %q, tracking %s", c.PipelineName, c.TrackingURI)
}
