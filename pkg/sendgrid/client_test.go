package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendBuildsV3Payload(t *testing.T) {
	t.Parallel()

	var captured sendRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &captured); err != nil {
			t.Errorf("payload did not decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := &Client{
		httpClient: srv.Client(),
		endpoint:   srv.URL,
		apiKey:     "sg-key",
		fromEmail:  "noreply@ateliera.ca",
		fromName:   "Ateliera",
	}

	err := client.Send(context.Background(), Message{
		To:       "shopper@example.com",
		Subject:  "Your verification code",
		TextBody: "Your code is 482913",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer sg-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(captured.Personalizations) != 1 || len(captured.Personalizations[0].To) != 1 {
		t.Fatalf("unexpected personalizations %+v", captured.Personalizations)
	}
	if captured.Personalizations[0].To[0].Email != "shopper@example.com" {
		t.Fatalf("unexpected recipient %+v", captured.Personalizations[0].To)
	}
	if captured.From.Email != "noreply@ateliera.ca" || captured.From.Name != "Ateliera" {
		t.Fatalf("unexpected sender %+v", captured.From)
	}
	if len(captured.Content) != 1 || captured.Content[0].Type != "text/plain" {
		t.Fatalf("unexpected content %+v", captured.Content)
	}
	if !strings.Contains(captured.Content[0].Value, "482913") {
		t.Fatalf("code missing from body %q", captured.Content[0].Value)
	}
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	client := &Client{
		httpClient: srv.Client(),
		endpoint:   srv.URL,
		apiKey:     "bad",
		fromEmail:  "noreply@ateliera.ca",
	}

	err := client.Send(context.Background(), Message{To: "shopper@example.com", Subject: "x", TextBody: "y"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestSendValidatesInput(t *testing.T) {
	t.Parallel()

	client := &Client{httpClient: &http.Client{Timeout: time.Second}, fromEmail: "noreply@ateliera.ca"}
	if err := client.Send(context.Background(), Message{Subject: "x", TextBody: "y"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if err := client.Send(context.Background(), Message{To: "a@b.c", Subject: "x"}); err == nil {
		t.Fatal("expected error for empty body")
	}
}
