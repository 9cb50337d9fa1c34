package installer_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/installer"
	"go.trai.ch/devd/internal/adapters/worker"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/zerr"
)

// TestHelperProcess is not a real test. It stands in for the devd binary
// when the installer spawns a worker.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("DEVD_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("DEVD_HELPER_MODE") {
	case "worker":
		if err := worker.New().Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
			os.Exit(1)
		}
	case "error":
		fmt.Println(`{"error":"version not published"}`)
		os.Exit(1)
	case "garbage":
		fmt.Println("this is not json")
	case "crash":
		fmt.Fprintln(os.Stderr, "panic: worker exploded")
		os.Exit(2)
	case "incomplete":
		fmt.Println(`{"version":"1.0.0"}`)
	case "sleep":
		time.Sleep(10 * time.Second)
	}
	os.Exit(0)
}

func helperSpawner(mode string) *installer.Spawner {
	return installer.NewSpawnerWithCommand(os.Args[0], "-test.run=^TestHelperProcess$", "--").
		WithEnv("DEVD_WANT_HELPER_PROCESS=1", "DEVD_HELPER_MODE="+mode)
}

func TestSpawner_InstallsInChildProcess(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.js"), []byte("module.exports = {}"), domain.FilePerm))
	root := t.TempDir()

	loc, err := helperSpawner("worker").Install(context.Background(), domain.InstallRequest{
		PackageName:     src,
		Version:         "1.0.0",
		DestinationRoot: root,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InstalledLocation{Version: "1.0.0", Path: filepath.Join(root, "1.0.0")}, loc)
	assert.FileExists(t, filepath.Join(loc.Path, "index.js"))
}

func TestSpawner_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode        string
		wantMessage string
	}{
		{mode: "error", wantMessage: "version not published"},
		{mode: "garbage", wantMessage: domain.ErrWorkerProtocol.Error()},
		{mode: "crash", wantMessage: "install worker exited without a response"},
		{mode: "incomplete", wantMessage: domain.ErrWorkerProtocol.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			_, err := helperSpawner(tt.mode).Install(context.Background(), domain.InstallRequest{
				PackageName:     "devd-plugin-echo",
				Version:         "1.0.0",
				DestinationRoot: t.TempDir(),
			})
			require.ErrorIs(t, err, domain.ErrInstall)
			assert.ErrorContains(t, err, tt.wantMessage)
		})
	}
}

func TestSpawner_CapturesStderr(t *testing.T) {
	t.Parallel()

	_, err := helperSpawner("crash").Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-echo",
		Version:         "1.0.0",
		DestinationRoot: t.TempDir(),
	})
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Contains(t, zErr.Metadata()["stderr"], "worker exploded")
	assert.Equal(t, "devd-plugin-echo", zErr.Metadata()["package"])
}

func TestSpawner_Deadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := helperSpawner("sleep").Install(ctx, domain.InstallRequest{
		PackageName:     "devd-plugin-echo",
		Version:         "1.0.0",
		DestinationRoot: t.TempDir(),
	})
	require.ErrorIs(t, err, domain.ErrInstall)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSpawner_MissingExecutable(t *testing.T) {
	t.Parallel()

	_, err := installer.NewSpawnerWithCommand(filepath.Join(t.TempDir(), "no-such-binary")).Install(
		context.Background(),
		domain.InstallRequest{PackageName: "x", Version: "1.0.0", DestinationRoot: t.TempDir()},
	)
	require.ErrorIs(t, err, domain.ErrInstall)
}
