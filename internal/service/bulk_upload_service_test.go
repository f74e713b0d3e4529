package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coop-gateway/internal/config"
	"github.com/spec-kit/coop-gateway/internal/domain"
	"github.com/spec-kit/coop-gateway/internal/repository"
	"github.com/spec-kit/coop-gateway/internal/upstream"
)

func newBulkService(baseURL string) (*BulkUploadService, repository.BulkJobRepository, *recordingDispatcher) {
	repo := repository.NewMemoryBulkJobRepository()
	dispatcher := &recordingDispatcher{}
	client := upstream.NewClient(config.UpstreamConfig{BaseURL: baseURL, TimeoutSeconds: 5}, zap.NewNop(), nil)
	return NewBulkUploadService(repo, client, dispatcher, zap.NewNop()), repo, dispatcher
}

func TestBulkUploadForwardsAndMarksJob(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/members/bulk", r.URL.Path)
		require.Equal(t, "sunrise", r.Header.Get("X-Tenant-Slug"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":3}`))
	}))
	defer server.Close()

	svc, repo, dispatcher := newBulkService(server.URL)

	job, resp, err := svc.Upload(context.Background(), BulkUploadInput{
		TenantSlug: "sunrise",
		UploaderID: "u-1",
		Filename:   "members.csv",
		RowCount:   3,
		Headers:    upstream.ForwardHeaders{TenantSlug: "sunrise"},
		Body:       []byte(`{"members":[{},{},{}]}`),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Status)
	require.JSONEq(t, `{"members":[{},{},{}]}`, string(gotBody))

	jobs, err := repo.ListByTenant(context.Background(), "sunrise", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, job.ID, jobs[0].ID)
	require.Equal(t, domain.BulkJobForwarded, jobs[0].Status)
	require.Len(t, dispatcher.events, 1)
}

func TestBulkUploadRecordsUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"row 2 invalid"}`))
	}))
	defer server.Close()

	svc, repo, _ := newBulkService(server.URL)

	_, resp, err := svc.Upload(context.Background(), BulkUploadInput{
		TenantSlug: "sunrise",
		UploaderID: "u-1",
		Filename:   "members.csv",
		RowCount:   2,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	jobs, err := repo.ListByTenant(context.Background(), "sunrise", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, domain.BulkJobFailed, jobs[0].Status)
	require.Contains(t, jobs[0].Message, "422")
}

func TestBulkUploadKeepsJobWhenUpstreamUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc, repo, _ := newBulkService(server.URL)

	job, _, err := svc.Upload(context.Background(), BulkUploadInput{
		TenantSlug: "sunrise",
		UploaderID: "u-1",
		Filename:   "members.csv",
		RowCount:   1,
	})
	require.Error(t, err)
	require.NotNil(t, job)

	jobs, listErr := repo.ListByTenant(context.Background(), "sunrise", 10)
	require.NoError(t, listErr)
	require.Len(t, jobs, 1)
	require.Equal(t, domain.BulkJobFailed, jobs[0].Status)
}
