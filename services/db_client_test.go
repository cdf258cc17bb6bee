package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iris-prediction/models"
)

func ptr(v float64) *float64 { return &v }

func sample() models.PredictionIn {
	return models.PredictionIn{
		SepalLength:    ptr(5.1),
		SepalWidth:     ptr(3.5),
		PetalLength:    ptr(1.4),
		PetalWidth:     ptr(0.2),
		PredictedClass: "Setosa",
	}
}

func TestRelayOutcomeString(t *testing.T) {
	tests := []struct {
		o    RelayOutcome
		want string
	}{
		{RelayDelivered, "delivered"},
		{RelayUpstreamError, "upstream_error"},
		{RelayTransportError, "transport_error"},
		{RelayOutcome(9), "RelayOutcome(9)"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSavePrediction_Delivered(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/prediction" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(models.Prediction{ID: 7, SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2, PredictedClass: "Setosa"})
	}))
	defer server.Close()

	client := NewDBClient(server.URL, time.Second)
	result := client.SavePrediction(context.Background(), sample())

	if result.Outcome != RelayDelivered {
		t.Fatalf("Outcome = %v, want delivered (err=%v)", result.Outcome, result.Err)
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Record == nil || result.Record.ID != 7 {
		t.Errorf("Record = %+v, want id 7", result.Record)
	}
	if got["predicted_class"] != "Setosa" || got["petal_width"] != 0.2 {
		t.Errorf("payload = %v", got)
	}
}

func TestSavePrediction_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := NewDBClient(server.URL, time.Second).SavePrediction(context.Background(), sample())

	if result.Outcome != RelayUpstreamError {
		t.Fatalf("Outcome = %v, want upstream_error", result.Outcome)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", result.StatusCode)
	}
	if !errors.Is(result.Err, ErrUpstream) {
		t.Errorf("Err = %v, want ErrUpstream", result.Err)
	}
}

func TestSavePrediction_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := NewDBClient(url, time.Second).SavePrediction(context.Background(), sample())

	if result.Outcome != RelayTransportError {
		t.Fatalf("Outcome = %v, want transport_error", result.Outcome)
	}
	if result.Err == nil {
		t.Error("Err should be set")
	}
}

func TestSavePrediction_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	result := NewDBClient(server.URL, 20*time.Millisecond).SavePrediction(context.Background(), sample())
	if result.Outcome != RelayTransportError {
		t.Errorf("Outcome = %v, want transport_error", result.Outcome)
	}
}

func TestSavePrediction_InvalidURL(t *testing.T) {
	result := NewDBClient("://invalid-url", time.Second).SavePrediction(context.Background(), sample())
	if result.Outcome != RelayTransportError {
		t.Errorf("Outcome = %v, want transport_error", result.Outcome)
	}
}

func TestListPredictions_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/prediction" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"sepal_length":5.1,"sepal_width":3.5,"petal_length":1.4,"petal_width":0.2,"predicted_class":"Setosa"}]`))
	}))
	defer server.Close()

	records, err := NewDBClient(server.URL, time.Second).ListPredictions(context.Background())
	if err != nil {
		t.Fatalf("ListPredictions() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].PredictedClass != "Setosa" || records[0].ID != 1 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestListPredictions_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	records, err := NewDBClient(server.URL, time.Second).ListPredictions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty slice", records)
	}
}

func TestListPredictions_Errors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewDBClient(server.URL, time.Second).ListPredictions(context.Background())
		if !errors.Is(err, ErrUpstream) {
			t.Errorf("err = %v, want ErrUpstream", err)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"a list"}`))
		}))
		defer server.Close()

		if _, err := NewDBClient(server.URL, time.Second).ListPredictions(context.Background()); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		if _, err := NewDBClient(url, time.Second).ListPredictions(context.Background()); err == nil {
			t.Error("expected connection error")
		}
	})
}
