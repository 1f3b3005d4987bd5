package main

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlister/internal/playback"
	"github.com/desertthunder/playlister/internal/shared"
	"github.com/desertthunder/playlister/internal/storage"
	tu "github.com/desertthunder/playlister/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := log.New(io.Discard)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := storage.NewMemoryStore()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Store:      store,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				APIBaseURL: "http://127.0.0.1:9999/v1",
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.apiBaseURL != "http://127.0.0.1:9999/v1" {
				t.Errorf("expected api base url to be set, got %s", runner.apiBaseURL)
			}
		})

		t.Run("with nil config defers loading", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to load on first command")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with empty base url uses the Web API", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.apiBaseURL != playback.DefaultBaseURL {
				t.Errorf("expected %s, got %s", playback.DefaultBaseURL, runner.apiBaseURL)
			}
			if runner.loginTimeout != loginTimeout {
				t.Errorf("expected default login timeout, got %v", runner.loginTimeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln wraps with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected newline-wrapped text, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "playlists", "play", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected %s at index %d, got %s", want[i], i, cmd.Name)
			}
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("missing file uses defaults", func(t *testing.T) {
			tu.MustChdir(t, t.TempDir())
			runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard)})

			config, err := runner.loadConfig("config.toml")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Storage.Path != "./playlister.db" {
				t.Errorf("expected default storage path, got %s", config.Storage.Path)
			}
		})

		t.Run("env file fills the client id", func(t *testing.T) {
			if _, ok := os.LookupEnv(shared.EnvClientID); ok {
				t.Skip("client id already set in the environment")
			}
			tu.MustChdir(t, t.TempDir())
			if err := os.WriteFile(envFile, []byte(shared.EnvClientID+"=from-env\n"), 0644); err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { os.Unsetenv(shared.EnvClientID) })

			runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard)})
			config, err := runner.loadConfig("config.toml")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Spotify.ClientID != "from-env" {
				t.Errorf("expected client id from .env, got %q", config.Spotify.ClientID)
			}
		})
	})

	t.Run("Close", func(t *testing.T) {
		calls := 0
		runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard)})
		runner.closers = append(runner.closers, func() error {
			calls++
			return nil
		})

		runner.Close()
		runner.Close()

		if calls != 1 {
			t.Errorf("expected closers to run once, got %d", calls)
		}
	})
}
