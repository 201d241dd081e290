package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenSource(token string) *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return token, time.Now().Add(time.Hour), nil
	}}
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	var gotURL string
	var gotBody string
	client := &Client{
		bucket:      "bucket",
		tokenSource: staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodPost {
				t.Fatalf("expected POST, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if req.Header.Get("Content-Type") != "image/png" {
				t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
			}
			gotURL = req.URL.String()
			raw, _ := io.ReadAll(req.Body)
			gotBody = string(raw)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"name":"covers/abc"}`)),
				Header:     http.Header{},
			}
		})},
	}

	obj, err := client.Upload(context.Background(), "covers/abc", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if obj.Key != "covers/abc" {
		t.Fatalf("unexpected key %q", obj.Key)
	}
	if obj.URL != "https://storage.googleapis.com/bucket/covers/abc" {
		t.Fatalf("unexpected public url %q", obj.URL)
	}
	if !strings.Contains(gotURL, "uploadType=media") || !strings.Contains(gotURL, "name=covers%2Fabc") {
		t.Fatalf("unexpected upload url %q", gotURL)
	}
	if gotBody != "png-bytes" {
		t.Fatalf("body not streamed, got %q", gotBody)
	}
}

func TestUploadFailureSurfacesStatus(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "bucket",
		tokenSource: staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusForbidden,
				Status:     "403 Forbidden",
				Body:       io.NopCloser(strings.NewReader("denied")),
				Header:     http.Header{},
			}
		})},
	}

	if _, err := client.Upload(context.Background(), "covers/abc", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestUploadRequiresKey(t *testing.T) {
	t.Parallel()

	client := &Client{bucket: "bucket", tokenSource: staticTokenSource("token")}
	if _, err := client.Upload(context.Background(), "", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestDeleteSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "bucket",
		tokenSource: staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Fatalf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if !strings.Contains(req.URL.EscapedPath(), "covers%2Fabc") {
				t.Fatalf("object key not escaped into path: %s", req.URL.String())
			}
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "covers/abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteNotFoundIsAnError(t *testing.T) {
	t.Parallel()

	client := &Client{
		bucket:      "bucket",
		tokenSource: staticTokenSource("token"),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Status:     "404 Not Found",
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.Delete(context.Background(), "covers/missing"); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	client := &Client{bucket: "bucket"}
	if got := client.PublicURL("covers/abc"); got != "https://storage.googleapis.com/bucket/covers/abc" {
		t.Fatalf("unexpected url %q", got)
	}
}
