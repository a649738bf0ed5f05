package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/maika/internal/config"
	"github.com/stretchr/testify/require"
)

const (
	contentDir   = "../../data/content"
	testSecret   = "an-exceedingly-long-webhook-secret-for-tests"
	testLogLevel = "error"
)

func testConfig(t *testing.T, secret string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 5055, LogLevel: testLogLevel, ShutdownTimeoutSeconds: 5},
		Database: config.DatabaseConfig{
			Path:          filepath.Join(t.TempDir(), "maika.db"),
			BusyTimeoutMS: 1000,
			MaxOpenConns:  1,
		},
		Content: config.ContentConfig{Dir: contentDir},
		Quiz:    config.QuizConfig{QuestionCount: 3},
		Auth:    config.AuthConfig{WebhookSecret: secret, TokenLifetimeMinutes: 60},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, secret string) *application {
	t.Helper()
	app, err := newApplication(context.Background(), testConfig(t, secret), testLogger())
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

// writeConfigFile writes a YAML config using a fresh database and returns
// its path.
func writeConfigFile(t *testing.T, secret string) string {
	t.Helper()
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("server:\n  log_level: " + testLogLevel + "\n")
	b.WriteString("database:\n  path: " + filepath.Join(dir, "maika.db") + "\n")
	b.WriteString("content:\n  dir: " + contentDir + "\n")
	if secret != "" {
		b.WriteString("auth:\n  webhook_secret: " + secret + "\n")
	}
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

// runCommand executes the root command with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
