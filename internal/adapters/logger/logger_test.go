package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/logger"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored records into a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("hidden")
	lg.Info("resolved core 1.4.0")
	lg.Warn("auto-update failed")

	assert.Equal(t, "resolved core 1.4.0\n! auto-update failed\n", buf.String())
}

func TestLogger_Verbose(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetVerbose(true)

	lg.Debug("removing 1.0.0")
	assert.Equal(t, "○ removing 1.0.0\n", buf.String())

	buf.Reset()
	lg.SetVerbose(false)
	lg.Debug("removing 1.0.0")
	assert.Empty(t, buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	cause := zerr.With(zerr.Wrap(errors.New("exit status 2"), "install worker exited without a response"), "package", "devd-plugin-echo")
	lg.Error(domain.Tag(domain.ErrInstall, cause))

	want := "✗ Error: install failed\n" +
		"\n" +
		"  Caused by:\n" +
		"    → install worker exited without a response (package=devd-plugin-echo)\n" +
		"    → exit status 2\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(domain.ErrPackageNotInstalled, "version", "9.9.9"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "package version is not installed", record["error"])
	assert.Equal(t, "9.9.9", record["version"])
	assert.NotContains(t, record, "kind")
}

func TestLogger_JSONKind(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(domain.Tag(domain.ErrRegistry, domain.Tag(domain.ErrPackageNotFound, errors.New("npm: not found"))))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "registry error", record["kind"])
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: []logger.ErrorEntry{{Message: "boom"}},
		},
		{
			name: "metadata on a plain error moves to the cause",
			err:  zerr.With(errors.New("dial tcp: refused"), "registry", "http://localhost"),
			want: []logger.ErrorEntry{
				{Message: "dial tcp: refused", Metadata: map[string]any{"registry": "http://localhost"}},
			},
		},
		{
			name: "kind over a wrapped chain",
			err:  domain.Tag(domain.ErrRegistry, zerr.Wrap(errors.New("timeout"), "failed to query versions")),
			want: []logger.ErrorEntry{
				{Message: "registry error"},
				{Message: "failed to query versions", Metadata: map[string]any{}},
				{Message: "timeout"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries_Multiline(t *testing.T) {
	got := logger.FormatErrorEntries([]logger.ErrorEntry{
		{Message: "install failed"},
		{Message: "worker said", Metadata: map[string]any{"stderr": "line one\nline two"}},
	})

	want := "Error: install failed\n" +
		"\n" +
		"  Caused by:\n" +
		`    → worker said (stderr="line one\nline two")`
	assert.Equal(t, want, got)
}
