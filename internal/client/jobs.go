package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/fivetwenty-io/arango/internal/constants"
	internalhttp "github.com/fivetwenty-io/arango/internal/http"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// JobsClient implements arango.JobsClient against the stored async job API.
type JobsClient struct {
	httpClient *internalhttp.Client
	database   string
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *internalhttp.Client, database string) *JobsClient {
	return &JobsClient{
		httpClient: httpClient,
		database:   database,
	}
}

func (j *JobsClient) path(parts ...string) string {
	path := constants.JobPath
	for _, part := range parts {
		path += "/" + part
	}

	return databasePath(j.database, path)
}

// Status implements arango.JobsClient.Status. The server answers 200 when
// the job result is ready and 204 while it is still executing.
func (j *JobsClient) Status(ctx context.Context, id string) (arango.JobStatus, error) {
	if id == "" {
		return "", constants.ErrNoAsyncJobID
	}

	resp, err := j.httpClient.Get(ctx, j.path(id), nil)
	if err != nil {
		return "", fmt.Errorf("getting job status: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return arango.JobStatusPending, nil
	}

	return arango.JobStatusDone, nil
}

// List implements arango.JobsClient.List. Unlike the rest of the API this
// endpoint answers with a bare JSON array of ids, not an envelope.
func (j *JobsClient) List(ctx context.Context, kind arango.JobKind) ([]string, error) {
	resp, err := j.httpClient.Get(ctx, j.path(string(kind)), nil)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	var ids []string

	err = json.Unmarshal(resp.Body, &ids)
	if err != nil {
		return nil, &arango.DecodeError{Err: fmt.Errorf("unmarshaling job list: %w", err)}
	}

	return ids, nil
}

// Cancel implements arango.JobsClient.Cancel. Cancellation is asynchronous:
// the job may still run for a short while after this returns.
func (j *JobsClient) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrNoAsyncJobID
	}

	_, err := j.httpClient.Put(ctx, j.path(id, "cancel"), nil)
	if err != nil {
		return fmt.Errorf("canceling job: %w", err)
	}

	return nil
}

// Delete implements arango.JobsClient.Delete. The target is a job id, "all",
// or "expired".
func (j *JobsClient) Delete(ctx context.Context, target string) error {
	if target == "" {
		return constants.ErrNoAsyncJobID
	}

	_, err := j.httpClient.Delete(ctx, j.path(target))
	if err != nil {
		return fmt.Errorf("deleting job result: %w", err)
	}

	return nil
}

// Wait implements arango.JobsClient.Wait. It polls the job status with
// exponential backoff until the result is ready, the context is canceled, or
// the overall poll deadline passes.
func (j *JobsClient) Wait(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrNoAsyncJobID
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = constants.DefaultJobPollInitialInterval
	policy.MaxInterval = constants.DefaultJobPollMaxInterval
	policy.MaxElapsedTime = constants.DefaultJobPollTimeout

	operation := func() error {
		status, err := j.Status(ctx, id)
		if err != nil {
			// The job is gone or the status request itself failed;
			// retrying will not help.
			return backoff.Permanent(err)
		}

		if status == arango.JobStatusPending {
			return constants.ErrJobNotDone
		}

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("waiting for job %s: %w", id, err)
	}

	return nil
}
