package worker_test

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/git-pkgs/registries/fetch"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/internal/adapters/worker"
	"go.trai.ch/devd/internal/core/domain"
)

type entry struct {
	name    string
	content string
	dir     bool
}

func tarball(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.content)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func sri(data []byte) string {
	sum := sha512.Sum512(data)
	return "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
}

// fakeRegistry serves one package with the given tarballs keyed by version.
func fakeRegistry(t *testing.T, name string, tarballs map[string][]byte, integrity map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/"+name, func(w http.ResponseWriter, _ *http.Request) {
		versions := map[string]any{}
		for v := range tarballs {
			versions[v] = map[string]any{
				"name":    name,
				"version": v,
				"dist": map[string]string{
					"tarball":   fmt.Sprintf("%s/%s/-/%s-%s.tgz", srv.URL, name, name, v),
					"integrity": integrity[v],
				},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"_id": name, "name": name, "versions": versions})
	})
	mux.HandleFunc("/"+name+"/-/", func(w http.ResponseWriter, r *http.Request) {
		for v, data := range tarballs {
			if strings.HasSuffix(r.URL.Path, "-"+v+".tgz") {
				_, _ = w.Write(data)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return srv
}

func newWorker(srv *httptest.Server) *worker.Worker {
	return worker.New(worker.WithFetcher(worker.NewFetcher(
		fetch.WithHTTPClient(srv.Client()),
		fetch.WithMaxRetries(0),
	)))
}

func TestWorker_InstallFromRegistry(t *testing.T) {
	t.Parallel()

	data := tarball(t,
		entry{name: "package/", dir: true},
		entry{name: "package/package.json", content: `{"name":"devd-plugin-echo","version":"1.2.0"}`},
		entry{name: "package/index.js", content: "module.exports = 1"},
		entry{name: "package/lib/util.js", content: "exports.x = 2"},
	)
	srv := fakeRegistry(t, "devd-plugin-echo", map[string][]byte{"1.2.0": data}, map[string]string{"1.2.0": sri(data)})

	root := filepath.Join(t.TempDir(), "plugins", "echo")
	loc, err := newWorker(srv).Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-echo",
		Version:         "1.2.0",
		DestinationRoot: root,
		Registry:        srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InstalledLocation{Version: "1.2.0", Path: filepath.Join(root, "1.2.0")}, loc)

	content, err := os.ReadFile(filepath.Join(loc.Path, "lib", "util.js"))
	require.NoError(t, err)
	assert.Equal(t, "exports.x = 2", string(content))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging directory must be cleaned up")
}

func TestWorker_IntegrityMismatch(t *testing.T) {
	t.Parallel()

	data := tarball(t, entry{name: "package/index.js", content: "real"})
	other := tarball(t, entry{name: "package/index.js", content: "tampered"})
	srv := fakeRegistry(t, "devd-plugin-echo", map[string][]byte{"1.0.0": data}, map[string]string{"1.0.0": sri(other)})

	root := t.TempDir()
	_, err := newWorker(srv).Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-echo",
		Version:         "1.0.0",
		DestinationRoot: root,
		Registry:        srv.URL,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrIntegrityMismatch.Error())

	_, statErr := os.Stat(filepath.Join(root, "1.0.0"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorker_VersionNotPublished(t *testing.T) {
	t.Parallel()

	data := tarball(t, entry{name: "package/index.js", content: "x"})
	srv := fakeRegistry(t, "devd-plugin-echo", map[string][]byte{"1.0.0": data}, nil)

	_, err := newWorker(srv).Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-echo",
		Version:         "9.9.9",
		DestinationRoot: t.TempDir(),
		Registry:        srv.URL,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrVersionNotPublished.Error())
}

func TestWorker_UnknownPackage(t *testing.T) {
	t.Parallel()

	srv := fakeRegistry(t, "devd-plugin-echo", nil, nil)

	_, err := newWorker(srv).Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-ghost",
		Version:         "1.0.0",
		DestinationRoot: t.TempDir(),
		Registry:        srv.URL,
	})
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestWorker_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	data := tarball(t, entry{name: "package/../../escape.js", content: "x"})
	srv := fakeRegistry(t, "devd-plugin-evil", map[string][]byte{"1.0.0": data}, nil)

	root := t.TempDir()
	_, err := newWorker(srv).Install(context.Background(), domain.InstallRequest{
		PackageName:     "devd-plugin-evil",
		Version:         "1.0.0",
		DestinationRoot: filepath.Join(root, "store"),
		Registry:        srv.URL,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnsafeArchivePath.Error())

	_, statErr := os.Stat(filepath.Join(root, "escape.js"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorker_InvalidRequest(t *testing.T) {
	t.Parallel()

	w := worker.New()
	tests := []domain.InstallRequest{
		{Version: "1.0.0", DestinationRoot: t.TempDir()},
		{PackageName: "x", Version: "latest", DestinationRoot: t.TempDir()},
		{PackageName: "x", Version: "1.0.0", DestinationRoot: "relative/dir"},
	}
	for _, req := range tests {
		_, err := w.Install(context.Background(), req)
		assert.ErrorContains(t, err, domain.ErrWorkerRequest.Error())
	}
}

func TestWorker_InstallFromLocalDirectory(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.js"), []byte("local"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(src, "package.json"), []byte(`{"version":"0.3.0"}`), domain.FilePerm))

	root := t.TempDir()
	loc, err := worker.New().Install(context.Background(), domain.InstallRequest{
		PackageName:     src,
		Version:         "0.3.0",
		DestinationRoot: root,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(loc.Path, "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(content))
}

func TestWorker_ConcurrentInstallsLeaveOneCompleteDirectory(t *testing.T) {
	t.Parallel()

	files := []entry{{name: "package/index.js", content: "module.exports = 'v1'"}}
	for i := range 20 {
		files = append(files, entry{name: fmt.Sprintf("package/lib/f%02d.js", i), content: strings.Repeat("x", 1024)})
	}
	archive := filepath.Join(t.TempDir(), "pkg.tgz")
	require.NoError(t, os.WriteFile(archive, tarball(t, files...), domain.FilePerm))

	root := t.TempDir()
	w := worker.New()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = w.Install(context.Background(), domain.InstallRequest{
				PackageName:     archive,
				Version:         "1.0.0",
				DestinationRoot: root,
			})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.0.0", entries[0].Name())

	libs, err := os.ReadDir(filepath.Join(root, "1.0.0", "lib"))
	require.NoError(t, err)
	assert.Len(t, libs, 20)
}

func TestWorker_Serve(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.js"), nil, domain.FilePerm))
	root := t.TempDir()

	req, err := json.Marshal(domain.InstallRequest{PackageName: src, Version: "2.0.0", DestinationRoot: root})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, worker.New().Serve(context.Background(), bytes.NewReader(req), &out))

	var resp domain.InstallResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, domain.InstallResponse{Version: "2.0.0", Path: filepath.Join(root, "2.0.0")}, resp)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestWorker_ServeMalformedRequest(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := worker.New().Serve(context.Background(), strings.NewReader("{not json"), &out)
	require.Error(t, err)

	var resp domain.InstallResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, resp.Error, domain.ErrWorkerRequest.Error())
	assert.Empty(t, resp.Path)
}
