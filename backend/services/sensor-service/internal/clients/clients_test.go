package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/models"
)

func TestSMSClientSendsToEveryRecipient(t *testing.T) {
	var (
		mu    sync.Mutex
		forms []url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("unexpected basic auth %q %q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		mu.Lock()
		forms = append(forms, r.PostForm)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	client := NewSMSClient(SMSConfig{
		BaseURL:    srv.URL,
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+15550000",
		To:         []string{"+15551111", "+15552222"},
	}, NewDefaultHTTPClient(time.Second), zap.NewNop())

	n := models.Notification{ID: "n-1", Condition: models.ConditionDanger, MQ2: models.Float(90), Timestamp: "2024-06-01T08:00:00"}
	if err := client.Send(context.Background(), n); err != nil {
		t.Fatalf("send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(forms) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(forms))
	}
	if forms[0].Get("To") != "+15551111" || forms[1].Get("To") != "+15552222" {
		t.Fatalf("unexpected recipients %v", forms)
	}
	if forms[0].Get("From") != "+15550000" {
		t.Fatalf("unexpected sender %q", forms[0].Get("From"))
	}
	if !strings.Contains(forms[0].Get("Body"), "Gas Level (MQ2): 90 ppm") {
		t.Fatalf("unexpected body %q", forms[0].Get("Body"))
	}
}

func TestSMSClientReportsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewSMSClient(SMSConfig{BaseURL: srv.URL, AccountSID: "AC1", To: []string{"+1"}},
		NewDefaultHTTPClient(time.Second), zap.NewNop())

	err := client.Send(context.Background(), models.Notification{ID: "n"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
}

func TestSMSClientDisabledWithoutURL(t *testing.T) {
	client := NewSMSClient(SMSConfig{To: []string{"+1"}}, NewDefaultHTTPClient(time.Second), zap.NewNop())
	if err := client.Send(context.Background(), models.Notification{ID: "n"}); err != nil {
		t.Fatalf("expected disabled client to skip, got %v", err)
	}
}

func TestForecastClientPassesThroughDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predictions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"next_1_hour":[{"mq2":12.5}],"next_10_hours":[]}`))
	}))
	defer srv.Close()

	client := NewForecastClient(srv.URL+"/", NewDefaultHTTPClient(time.Second))
	doc, err := client.Predictions(context.Background())
	if err != nil {
		t.Fatalf("predictions: %v", err)
	}
	if !strings.Contains(string(doc), `"next_10_hours"`) {
		t.Fatalf("unexpected document %s", doc)
	}
}

func TestForecastClientErrors(t *testing.T) {
	if _, err := NewForecastClient("", NewDefaultHTTPClient(time.Second)).Predictions(context.Background()); !errors.Is(err, ErrForecastDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := NewForecastClient(srv.URL, NewDefaultHTTPClient(time.Second)).Predictions(context.Background()); !errors.Is(err, ErrForecastMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
