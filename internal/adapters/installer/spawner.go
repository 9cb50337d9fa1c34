// Package installer runs each install in a fresh worker process.
package installer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Installer = (*Spawner)(nil)

// maxStderr bounds how much worker stderr is kept for error reports.
const maxStderr = 8 << 10

// WorkerArgs are the arguments that start the hidden worker command.
var WorkerArgs = []string{"worker", "install"}

// Spawner implements ports.Installer by re-executing the devd binary.
type Spawner struct {
	executablePath string
	args           []string
	env            []string
}

// NewSpawner creates a Spawner that runs the current executable.
func NewSpawner() (*Spawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine executable path")
	}
	return NewSpawnerWithCommand(exe, WorkerArgs...), nil
}

// NewSpawnerWithCommand creates a Spawner that runs name with args.
func NewSpawnerWithCommand(name string, args ...string) *Spawner {
	return &Spawner{executablePath: name, args: args}
}

// WithEnv appends environment variables to the worker process.
func (s *Spawner) WithEnv(env ...string) *Spawner {
	s.env = append(s.env, env...)
	return s
}

// Install runs one worker process for req and waits for its response.
func (s *Spawner) Install(ctx context.Context, req domain.InstallRequest) (domain.InstalledLocation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.InstalledLocation{}, s.fail(zerr.Wrap(err, "failed to encode worker request"), req, "")
	}

	//nolint:gosec // G204: executablePath is the devd binary, args are fixed literals
	cmd := exec.CommandContext(ctx, s.executablePath, s.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), s.env...)

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.InstalledLocation{}, s.fail(zerr.Wrap(ctxErr, "install worker cancelled"), req, stderr.String())
	}

	resp, decodeErr := decodeResponse(stdout.Bytes())
	if decodeErr != nil {
		if runErr != nil {
			return domain.InstalledLocation{}, s.fail(zerr.Wrap(runErr, "install worker exited without a response"), req, stderr.String())
		}
		return domain.InstalledLocation{}, s.fail(decodeErr, req, stderr.String())
	}

	if resp.Error != "" {
		return domain.InstalledLocation{}, s.fail(zerr.New(resp.Error), req, stderr.String())
	}
	if resp.Path == "" || resp.Version == "" {
		return domain.InstalledLocation{}, s.fail(zerr.With(domain.ErrWorkerProtocol, "response", stdout.String()), req, stderr.String())
	}

	return domain.InstalledLocation{Version: resp.Version, Path: resp.Path}, nil
}

func (s *Spawner) fail(err error, req domain.InstallRequest, stderr string) error {
	err = zerr.With(err, "package", req.PackageName)
	err = zerr.With(err, "version", req.Version)
	if stderr = strings.TrimSpace(stderr); stderr != "" {
		err = zerr.With(err, "stderr", stderr)
	}
	return domain.Tag(domain.ErrInstall, err)
}

// decodeResponse reads the last non-empty line of the worker output.
func decodeResponse(out []byte) (domain.InstallResponse, error) {
	var last string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	if last == "" {
		return domain.InstallResponse{}, domain.ErrWorkerProtocol
	}

	var resp domain.InstallResponse
	if err := json.Unmarshal([]byte(last), &resp); err != nil {
		return domain.InstallResponse{}, zerr.With(zerr.Wrap(err, domain.ErrWorkerProtocol.Error()), "line", last)
	}
	return resp, nil
}

// limitedBuffer keeps the first limit bytes written to it.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
