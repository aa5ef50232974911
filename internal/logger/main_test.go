package logger_test

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/logger"
)

func TestInit(t *testing.T) {
	type testCase struct {
		name             string
		cfg              logger.Log
		wantErr          bool
		shouldHaveOutput bool
	}

	testCases := []testCase{
		{
			name: "missing service name",
			cfg: logger.Log{
				LogLevel: "info",
				AppName:  "test",
			},
			wantErr: true,
		},
		{
			name: "missing app name",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
			},
			wantErr: true,
		},
		{
			name: "unsupported level",
			cfg: logger.Log{
				LogLevel:    "noisy",
				ServiceName: "test",
				AppName:     "test",
			},
			wantErr: true,
		},
		{
			name: "no writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
			},
			shouldHaveOutput: false,
		},
		{
			name: "console enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutput: true,
		},
		{
			name: "console enabled with console writer",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutput: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := captureInitAndLog(t, tc.cfg)

			if (err != nil) != tc.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tc.wantErr)
			}

			if tc.wantErr {
				return
			}

			if tc.shouldHaveOutput && !strings.Contains(out, "logger test message") {
				t.Errorf("expected console output, got: %q", out)
			}

			if !tc.shouldHaveOutput && out != "" {
				t.Errorf("expected no console output, got: %q", out)
			}
		})
	}
}

func captureInitAndLog(t *testing.T, cfg logger.Log) (string, error) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}

	os.Stdout = w
	os.Stderr = w

	defer func() {
		os.Stdout = stdout
		os.Stderr = stderr
	}()

	err := logger.Init(cfg)
	if err == nil {
		log.Info().Msg("logger test message")
	}

	if errClose := w.Close(); errClose != nil {
		t.Fatalf("failed to close pipe writer: %v", errClose)
	}

	outBytes, readErr := io.ReadAll(r)
	if readErr != nil {
		t.Fatalf("failed to read captured output: %v", readErr)
	}

	return string(outBytes), err
}
