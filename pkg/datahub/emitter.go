package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/acryldata/datahub-mlflow-source/pkg/contract"
)

// Emitter publishes proposals to a catalog. The pipeline core never calls
// it; the runner drains the workunit stream into one.
type Emitter interface {
	Emit(ctx context.Context, proposal *Proposal) error
	Close() error
}

// RESTEmitter posts proposals to a DataHub GMS ingestProposal endpoint.
type RESTEmitter struct {
	serverURL  string
	token      string
	httpClient *http.Client
}

func NewRESTEmitter(serverURL, token string, timeout time.Duration) *RESTEmitter {
	return &RESTEmitter{
		serverURL:  serverURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *RESTEmitter) Emit(ctx context.Context, proposal *Proposal) error {
	aspect, err := json.Marshal(proposal.Aspect)
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to serialize aspect: %v", err)
	}

	// The REST surface wants the aspect double-encoded as a JSON string.
	payload, err := json.Marshal(map[string]any{
		"proposal": map[string]any{
			"entityType": proposal.EntityType,
			"entityUrn":  proposal.EntityURN,
			"changeType": proposal.ChangeType,
			"aspectName": proposal.AspectName,
			"aspect": map[string]any{
				"contentType": "application/json",
				"value":       string(aspect),
			},
		},
	})
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to serialize proposal: %v", err)
	}

	endpoint := e.serverURL + "/aspects?action=ingestProposal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RestLi-Protocol-Version", "2.0.0")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to emit %s: %v", proposal.EntityURN, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return contract.NewErrorf(
			contract.ErrorCodeEmitter,
			"emit of %s (%s) returned %d: %s",
			proposal.EntityURN, proposal.AspectName, resp.StatusCode, string(body),
		)
	}

	return nil
}

func (e *RESTEmitter) Close() error {
	e.httpClient.CloseIdleConnections()

	return nil
}

// FileEmitter writes newline-delimited proposal JSON, the dry-run surface.
type FileEmitter struct {
	file *os.File
}

func NewFileEmitter(path string) (*FileEmitter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, contract.NewErrorf(contract.ErrorCodeEmitter, "failed to open output file: %v", err)
	}

	return &FileEmitter{file: file}, nil
}

func (e *FileEmitter) Emit(_ context.Context, proposal *Proposal) error {
	data, err := json.Marshal(proposal)
	if err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to serialize proposal: %v", err)
	}

	if _, err := fmt.Fprintf(e.file, "%s\n", data); err != nil {
		return contract.NewErrorf(contract.ErrorCodeEmitter, "failed to write proposal: %v", err)
	}

	return nil
}

func (e *FileEmitter) Close() error {
	return e.file.Close()
}
