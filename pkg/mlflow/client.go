// Package mlflow is a thin client for the MLflow tracking and model
// registry REST API, exposing only the search and lookup calls the
// connector needs.
package mlflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
	"github.com/acryldata/datahub-mlflow-source/pkg/entities"
	"github.com/acryldata/datahub-mlflow-source/pkg/paging"
)

// Client is the capability surface the pipeline consumes. Search calls
// return one page per invocation; traversal across pages is the caller's
// concern.
type Client interface {
	SearchExperiments(ctx context.Context, pageToken string) (*paging.Page[*entities.Experiment], error)
	SearchRuns(ctx context.Context, experimentID, pageToken string) (*paging.Page[*entities.Run], error)
	SearchRegisteredModels(ctx context.Context, pageToken string) (*paging.Page[*entities.RegisteredModel], error)
	SearchModelVersions(ctx context.Context, filter, pageToken string) (*paging.Page[*entities.ModelVersion], error)
	GetRun(ctx context.Context, runID string) (*entities.Run, error)

	// TrackingURI reports the configured tracking endpoint, used as the
	// external-URL fallback.
	TrackingURI() string
}

const apiPrefix = "/api/2.0/mlflow"

type RestClient struct {
	trackingURI string
	registryURI string
	pageSize    int
	httpClient  *http.Client
}

func NewRestClient(trackingURI, registryURI string, pageSize int, timeout time.Duration) *RestClient {
	if registryURI == "" {
		registryURI = trackingURI
	}

	return &RestClient{
		trackingURI: trackingURI,
		registryURI: registryURI,
		pageSize:    pageSize,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *RestClient) TrackingURI() string {
	return c.trackingURI
}

func (c *RestClient) SearchExperiments(
	ctx context.Context, pageToken string,
) (*paging.Page[*entities.Experiment], error) {
	body := map[string]any{"max_results": c.pageSize}
	if pageToken != "" {
		body["page_token"] = pageToken
	}

	result, err := c.post(ctx, c.trackingURI, "/experiments/search", body)
	if err != nil {
		return nil, err
	}

	return parsePage(result, "experiments", parseExperiment), nil
}

func (c *RestClient) SearchRuns(
	ctx context.Context, experimentID, pageToken string,
) (*paging.Page[*entities.Run], error) {
	body := map[string]any{
		"experiment_ids": []string{experimentID},
		"max_results":    c.pageSize,
	}
	if pageToken != "" {
		body["page_token"] = pageToken
	}

	result, err := c.post(ctx, c.trackingURI, "/runs/search", body)
	if err != nil {
		return nil, err
	}

	return parsePage(result, "runs", parseRun), nil
}

func (c *RestClient) SearchRegisteredModels(
	ctx context.Context, pageToken string,
) (*paging.Page[*entities.RegisteredModel], error) {
	query := url.Values{"max_results": {strconv.Itoa(c.pageSize)}}
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	result, err := c.get(ctx, c.registryURI, "/registered-models/search", query)
	if err != nil {
		return nil, err
	}

	return parsePage(result, "registered_models", parseRegisteredModel), nil
}

func (c *RestClient) SearchModelVersions(
	ctx context.Context, filter, pageToken string,
) (*paging.Page[*entities.ModelVersion], error) {
	query := url.Values{"max_results": {strconv.Itoa(c.pageSize)}}
	if filter != "" {
		query.Set("filter", filter)
	}
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	result, err := c.get(ctx, c.registryURI, "/model-versions/search", query)
	if err != nil {
		return nil, err
	}

	return parsePage(result, "model_versions", parseModelVersion), nil
}

func (c *RestClient) GetRun(ctx context.Context, runID string) (*entities.Run, error) {
	result, err := c.get(ctx, c.trackingURI, "/runs/get", url.Values{"run_id": {runID}})
	if err != nil {
		return nil, err
	}

	return parseRun(result.Get("run")), nil
}

func (c *RestClient) post(ctx context.Context, base, path string, body map[string]any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, contract.NewErrorf(contract.ErrorCodeInternal, "failed to encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+apiPrefix+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, contract.NewErrorf(contract.ErrorCodeTrackingBackend, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *RestClient) get(ctx context.Context, base, path string, query url.Values) (gjson.Result, error) {
	endpoint := base + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, contract.NewErrorf(contract.ErrorCodeTrackingBackend, "failed to build request: %v", err)
	}

	return c.do(req)
}

func (c *RestClient) do(req *http.Request) (gjson.Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, contract.NewErrorf(
			contract.ErrorCodeTrackingBackend, "request to %s failed: %v", req.URL.Path, err,
		)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, contract.NewErrorf(contract.ErrorCodeTrackingBackend, "failed to read response: %v", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return gjson.Result{}, contract.NewErrorf(
			contract.ErrorCodeNotFound, "%s returned 404: %s", req.URL.Path, errorMessage(data),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, contract.NewErrorf(
			contract.ErrorCodeTrackingBackend,
			"%s returned %d: %s", req.URL.Path, resp.StatusCode, errorMessage(data),
		)
	}

	return gjson.ParseBytes(data), nil
}

func errorMessage(data []byte) string {
	if msg := gjson.GetBytes(data, "message"); msg.Exists() {
		return msg.String()
	}

	return fmt.Sprintf("%.200s", string(data))
}
