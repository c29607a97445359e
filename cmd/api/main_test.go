package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/medspa-frontdesk/internal/config"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}
	m.ObserveRejection("slot_conflict")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "frontdesk_booking_rejections_total") {
		t.Fatalf("expected frontdesk metrics in output")
	}
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		StoreBackend:    appconfig.BackendMemory,
		DuplicatePolicy: "name_contact",
		IDStrategy:      "sequential",
		StatusLabels:    true,
		ClinicTimezone:  "UTC",
		EmailProvider:   "none",
	}
}

func TestBuildHandlerServesMemoryBackend(t *testing.T) {
	handler, cleanup, err := buildHandler(context.Background(), testConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("buildHandler: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/departments", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Dermatology") {
		t.Fatalf("departments: %d %s", rr.Code, rr.Body.String())
	}

	body := bytes.NewBufferString(`{"name":"Jane Doe","age":30,"gender":"F","contact":"9998887777"}`)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/patients", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
}

func TestBuildHandlerPersistsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.StoreBackend = appconfig.BackendRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisKeyPrefix = "frontdesk:"

	_, cleanup, err := buildHandler(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildHandler: %v", err)
	}
	defer cleanup()

	if !mr.Exists("frontdesk:doctors") {
		t.Fatalf("expected reference data seeded into redis, keys=%v", mr.Keys())
	}
}

func TestBuildHandlerRejectsBadReferenceData(t *testing.T) {
	cfg := testConfig()
	cfg.ReferenceDataPath = t.TempDir() + "/missing.json"
	if _, _, err := buildHandler(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for missing reference data file")
	}
}
