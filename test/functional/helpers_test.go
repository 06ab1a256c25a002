//go:build functional

// Package functional provides functional tests for the CRM REST API and
// its WebSocket event stream.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mpetrov/crm-backend/internal/config"
	"github.com/mpetrov/crm-backend/internal/model"
	"github.com/mpetrov/crm-backend/internal/server"
	"github.com/mpetrov/crm-backend/internal/store"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost    = "TEST_SERVER_HOST"
	EnvTestServerPort    = "TEST_SERVER_PORT"
	EnvTestTimeout       = "TEST_TIMEOUT"
	EnvTestLogLevel      = "TEST_LOG_LEVEL"
	EnvTestMetricsEnable = "TEST_METRICS_ENABLED"
)

// Default test configuration values.
const (
	DefaultTestHost        = "localhost"
	DefaultTestPort        = 0 // 0 means auto-assign
	DefaultTestTimeout     = 30 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "error"
	DefaultMetricsEnabled  = false
)

// TestConfig holds test configuration loaded from environment variables.
type TestConfig struct {
	Host           string
	Port           int
	Timeout        time.Duration
	LogLevel       string
	MetricsEnabled bool
}

// LoadTestConfig loads test configuration from environment variables.
func LoadTestConfig() *TestConfig {
	cfg := &TestConfig{
		Host:           DefaultTestHost,
		Port:           DefaultTestPort,
		Timeout:        DefaultTestTimeout,
		LogLevel:       DefaultLogLevel,
		MetricsEnabled: DefaultMetricsEnabled,
	}

	if host := os.Getenv(EnvTestServerHost); host != "" {
		cfg.Host = host
	}

	if portStr := os.Getenv(EnvTestServerPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}

	if timeoutStr := os.Getenv(EnvTestTimeout); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Timeout = timeout
		}
	}

	if logLevel := os.Getenv(EnvTestLogLevel); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if metricsStr := os.Getenv(EnvTestMetricsEnable); metricsStr != "" {
		if enabled, err := strconv.ParseBool(metricsStr); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}

	return cfg
}

// TestServer wraps the server for testing purposes. The store is backed
// by a temp file so the whole persistence path is exercised.
type TestServer struct {
	Server   *server.Server
	DBFile   string
	BaseURL  string
	WSURL    string
	Port     int
	listener net.Listener
	t        *testing.T
	mu       sync.Mutex
	started  bool
}

// NewTestServer creates a new test server instance.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testCfg := LoadTestConfig()

	// Find an available port
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", testCfg.Host, testCfg.Port))
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	dbFile := filepath.Join(t.TempDir(), "db.json")

	// Create server configuration
	cfg := &config.Config{
		ServerPort:      port,
		DBFile:          dbFile,
		LogLevel:        testCfg.LogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  testCfg.MetricsEnabled,
	}

	// Create logger (use nop logger for tests to reduce noise)
	logger := zap.NewNop()

	// Create the file-backed store
	backend := store.NewFileBackend(dbFile)
	if err := backend.Init(); err != nil {
		t.Fatalf("Failed to initialize db file: %v", err)
	}
	clientStore := store.NewClientStore(backend)

	// Create server
	srv := server.New(cfg, logger, clientStore)

	return &TestServer{
		Server:   srv,
		DBFile:   dbFile,
		BaseURL:  fmt.Sprintf("http://%s:%d", testCfg.Host, port),
		WSURL:    fmt.Sprintf("ws://%s:%d", testCfg.Host, port),
		Port:     port,
		listener: listener,
		t:        t,
	}
}

// Start starts the test server.
func (ts *TestServer) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.started {
		return
	}

	// Close the listener we used to find the port
	ts.listener.Close()

	// Start server in goroutine
	go func() {
		if err := ts.Server.Start(); err != nil {
			ts.t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	ts.waitForReady()
	ts.started = true
}

// waitForReady waits for the server to be ready to accept connections.
func (ts *TestServer) waitForReady() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/health")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// Stop stops the test server.
func (ts *TestServer) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}

	ts.started = false
}

// httpClient returns a client with a sensible request timeout.
func httpClient() *http.Client {
	return &http.Client{Timeout: DefaultRequestTimeout}
}

// doJSON performs an HTTP request with an optional JSON body and returns
// the status code and raw response body.
func doJSON(t *testing.T, client *http.Client, method, url, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
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

// createClient creates a client over HTTP and returns the decoded record.
func createClient(t *testing.T, client *http.Client, baseURL, body string) model.Client {
	t.Helper()

	status, data := doJSON(t, client, http.MethodPost, baseURL+"/api/clients", body)
	if status != http.StatusCreated {
		t.Fatalf("Create returned %d: %s", status, data)
	}

	var created model.Client
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("Failed to decode created client: %v", err)
	}

	return created
}
