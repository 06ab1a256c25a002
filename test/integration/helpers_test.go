//go:build integration

// Package integration provides smoke tests against a deployed CRM
// instance. The target URL comes from TEST_SERVER_URL; tests skip when
// no instance is reachable.
package integration_test

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Environment variable names for test configuration.
const (
	EnvServerURL = "TEST_SERVER_URL"
)

// Default test configuration values.
const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultRequestTimeout = 10 * time.Second
)

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// serverURL returns the base URL of the server under test.
func serverURL() string {
	return getEnvOrDefault(EnvServerURL, DefaultServerURL)
}

// createHTTPClient creates an HTTP client with a request timeout.
func createHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultRequestTimeout}
}

// skipIfServiceUnavailable skips the test when the service does not
// answer its health endpoint.
func skipIfServiceUnavailable(t *testing.T, healthURL string) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(healthURL)
	if err != nil {
		t.Skipf("Service unavailable at %s: %v", healthURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Skipf("Service at %s returned %d", healthURL, resp.StatusCode)
	}
}

// doRequest performs an HTTP request and returns the status code and body.
func doRequest(t *testing.T, client *http.Client, method, url string, body []byte, headers map[string]string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp.StatusCode, data
}
