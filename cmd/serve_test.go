package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/briefing-cli/internal/config"
	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/pipeline"
	"github.com/sells-group/briefing-cli/internal/store"
)

// stubRunner records the webhook request and returns a canned response.
type stubRunner struct {
	resp   *model.BriefingResponse
	err    error
	gotReq model.BriefingRequest
	calls  int
}

func (s *stubRunner) Run(_ context.Context, req model.BriefingRequest) (*model.BriefingResponse, error) {
	s.calls++
	s.gotReq = req
	return s.resp, s.err
}

// stubLeadStore serves canned lead records to the /leads endpoint.
type stubLeadStore struct {
	records []model.LeadRecord
	listErr error
}

func (s *stubLeadStore) Upsert(context.Context, string, *model.BriefingDocument) error { return nil }

func (s *stubLeadStore) List(context.Context) ([]model.LeadRecord, error) {
	return s.records, s.listErr
}

// stubRunStore only exists so /health has something to ping.
type stubRunStore struct {
	pingErr error
}

func (s *stubRunStore) CreateRun(context.Context, model.BriefingRequest, string) (*model.BriefingRun, error) {
	return nil, nil
}

func (s *stubRunStore) CompleteRun(context.Context, string, model.RunStatus, *model.BriefingDocument, *model.Metadata) error {
	return nil
}

func (s *stubRunStore) GetRun(context.Context, string) (*model.BriefingRun, error) { return nil, nil }

func (s *stubRunStore) ListRuns(context.Context, store.RunFilter) ([]model.BriefingRun, error) {
	return nil, nil
}

func (s *stubRunStore) Ping(context.Context) error { return s.pingErr }

func (s *stubRunStore) Migrate(context.Context) error { return nil }

func (s *stubRunStore) Close() error { return nil }

func testServerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-haiku-4-5-20251001"},
		Leads:     config.LeadsConfig{Backend: "local"},
		Store:     config.StoreConfig{Driver: "sqlite"},
	}
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(&stubRunner{}, nil, &stubLeadStore{}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, serviceVersion, body["version"])
}

func TestRouter_Health_StoreUnreachable(t *testing.T) {
	runs := &stubRunStore{pingErr: errors.New("connection refused")}
	router := newRouter(&stubRunner{}, runs, &stubLeadStore{}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["store"])
}

func TestRouter_Webhook_Success(t *testing.T) {
	runner := &stubRunner{resp: &model.BriefingResponse{
		Status:  model.StatusSuccess,
		Message: "Successfully generated briefing for lead 00Q5f000001AbCdEAA",
		Briefing: &model.BriefingDocument{
			CompanyProfile: "Acme Corp is a logistics company.",
		},
		Metadata: model.Metadata{
			ProcessingTimeSeconds: 2.5,
			RecordStoreUpdated:    true,
			ContextFound:          true,
			IntelligenceValid:     true,
		},
	}}
	router := newRouter(runner, nil, &stubLeadStore{}, testServerConfig())

	payload := `{"company_domain":"acme-corp.com","context_id":"ctx_q3_outbound","lead_id":"00Q5f000001AbCdEAA"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "acme-corp.com", runner.gotReq.CompanyDomain)
	assert.Equal(t, "00Q5f000001AbCdEAA", runner.gotReq.LeadID)

	var resp model.BriefingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.StatusSuccess, resp.Status)
	assert.Contains(t, resp.Message, "00Q5f000001AbCdEAA")
	assert.True(t, resp.Metadata.RecordStoreUpdated)
}

func TestRouter_Webhook_InvalidJSON(t *testing.T) {
	runner := &stubRunner{}
	router := newRouter(runner, nil, &stubLeadStore{}, testServerConfig())

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
	assert.Zero(t, runner.calls)
}

func TestRouter_Webhook_ValidationError(t *testing.T) {
	runner := &stubRunner{
		err: fmt.Errorf("company_domain must contain a dot: %w", pipeline.ErrInvalidRequest),
	}
	router := newRouter(runner, nil, &stubLeadStore{}, testServerConfig())

	payload := `{"company_domain":"localhost","context_id":"ctx","lead_id":"lead-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "company_domain")
}

func TestRouter_Webhook_IntelligenceError(t *testing.T) {
	runner := &stubRunner{
		err: fmt.Errorf("Failed to gather company intelligence: Critical error: no route to host: %w", pipeline.ErrNoIntelligence),
	}
	router := newRouter(runner, nil, &stubLeadStore{}, testServerConfig())

	payload := `{"company_domain":"unreachable.example","context_id":"ctx","lead_id":"lead-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "Failed to gather company intelligence")
}

func TestRouter_Webhook_UnexpectedError(t *testing.T) {
	runner := &stubRunner{err: errors.New("unexpected boundary fault")}
	router := newRouter(runner, nil, &stubLeadStore{}, testServerConfig())

	payload := `{"company_domain":"acme-corp.com","context_id":"ctx","lead_id":"lead-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "unexpected boundary fault")
}

func TestRouter_Leads(t *testing.T) {
	leads := &stubLeadStore{records: []model.LeadRecord{
		{LeadID: "00Q5f000001AbCdEAA", CompanyName: "Acme Corp", Status: model.LeadStatusBriefingGenerated},
		{LeadID: "00Q5f000001XyZwEAA", CompanyName: "Globex", Status: model.LeadStatusNew},
	}}
	router := newRouter(&stubRunner{}, nil, leads, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Total int                `json:"total"`
		Leads []model.LeadRecord `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Leads, 2)
	assert.Equal(t, "Acme Corp", body.Leads[0].CompanyName)
}

func TestRouter_Leads_ListError(t *testing.T) {
	leads := &stubLeadStore{listErr: errors.New("backend down")}
	router := newRouter(&stubRunner{}, nil, leads, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to list leads")
}

func TestRouter_Config_Redacted(t *testing.T) {
	router := newRouter(&stubRunner{}, nil, &stubLeadStore{}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sk-ant-test")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["anthropic_configured"])
	assert.Equal(t, false, body["news_configured"])
	assert.Equal(t, false, body["salesforce_configured"])
	assert.Equal(t, "local", body["lead_backend"])
	assert.Equal(t, "sqlite", body["store_driver"])
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newRouter(&stubRunner{}, nil, &stubLeadStore{}, testServerConfig())

	req := httptest.NewRequest(http.MethodOptions, "/webhook", nil)
	req.Header.Set("Origin", "https://crm.sells.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
