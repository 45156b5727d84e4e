package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetStats(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/boards", `{"name":"counted"}`)
	resp.Body.Close()

	stepResp := postJSON(t, ts.URL+"/v1/step", `{"rule":"r"}`)
	stepResp.Body.Close()

	waitFor(t, 2*time.Second, func() bool {
		return !getGrid(t, ts.URL).Stepping
	})

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}

	if stats.StepsRun != 1 {
		t.Errorf("StepsRun = %d, want 1", stats.StepsRun)
	}
	if stats.CellsGenerated != 9 {
		t.Errorf("CellsGenerated = %d, want 9", stats.CellsGenerated)
	}
	if stats.SavedBoards != 1 {
		t.Errorf("SavedBoards = %d, want 1", stats.SavedBoards)
	}
}

func TestListProviders(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/providers")
	if err != nil {
		t.Fatalf("GET /v1/providers: %v", err)
	}
	defer resp.Body.Close()

	var body map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode providers: %v", err)
	}
	if len(body["providers"]) != 1 || body["providers"][0] != "fake" {
		t.Errorf("providers = %v, want [fake]", body["providers"])
	}
}
