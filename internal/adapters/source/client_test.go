package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"Location": "Tenerife", "Year": 1977, "Type": "Commercial", "Fatalities": 583, "Country": "Spain", "Latitude": 28.48, "Longitude": -16.34},
			{"Location": "Test Range", "Year": 2003, "Type": "Military", "Fatalities": 7, "Country": "United States"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	records, err := client.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Location != "Tenerife" || records[0].Fatalities != 583 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Latitude != 0 || records[1].Longitude != 0 {
		t.Errorf("absent coordinates must decode as zero, got %+v", records[1])
	}
}

func TestFetchRecords_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	if _, err := client.FetchRecords(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchRecords_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	if _, err := client.FetchRecords(context.Background()); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
