package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devd/cmd/devd/commands"
	"go.trai.ch/devd/internal/app"
	"go.trai.ch/devd/internal/build"
)

type mockApp struct {
	load    []app.LoadOptions
	install []app.InstallOptions
	list    []app.ListOptions
	remove  []app.RemoveOptions
	watch   []app.WatchOptions
	err     error

	workerIn string
}

func (m *mockApp) Load(_ context.Context, opts app.LoadOptions) error {
	m.load = append(m.load, opts)
	return m.err
}

func (m *mockApp) Install(_ context.Context, opts app.InstallOptions) error {
	m.install = append(m.install, opts)
	return m.err
}

func (m *mockApp) List(_ context.Context, opts app.ListOptions) error {
	m.list = append(m.list, opts)
	return m.err
}

func (m *mockApp) Remove(_ context.Context, opts app.RemoveOptions) error {
	m.remove = append(m.remove, opts)
	return m.err
}

func (m *mockApp) Watch(_ context.Context, opts app.WatchOptions) error {
	m.watch = append(m.watch, opts)
	return m.err
}

func (m *mockApp) RunWorker(_ context.Context, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	m.workerIn = string(data)
	_, err = io.WriteString(out, `{"version":"1.0.0"}`)
	return err
}

type settings struct {
	json, verbose bool
}

func (s *settings) SetJSON(enable bool)    { s.json = enable }
func (s *settings) SetVerbose(enable bool) { s.verbose = enable }

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a, nil)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Load(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "load", "-C", "/srv/site")
	require.NoError(t, err)
	assert.Equal(t, []app.LoadOptions{{Dir: "/srv/site"}}, mock.load)
}

func TestCommands_LoadError(t *testing.T) {
	mock := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, mock, "load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestCommands_Install(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.InstallOptions
	}{
		{
			name: "plugin",
			args: []string{"install", "livereload@^1.2"},
			want: app.InstallOptions{Dir: ".", Spec: "livereload@^1.2"},
		},
		{
			name: "core",
			args: []string{"install", "--core", "2.0.0"},
			want: app.InstallOptions{Dir: ".", Spec: "2.0.0", Core: true},
		},
		{
			name: "core from directory",
			args: []string{"install", "--core", "--from", "../core"},
			want: app.InstallOptions{Dir: ".", Core: true, From: "../core"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockApp{}
			_, err := execute(t, mock, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, []app.InstallOptions{tt.want}, mock.install)
		})
	}
}

func TestCommands_InstallRequiresName(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "install")
	require.Error(t, err)
	assert.Empty(t, mock.install)
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "ls", "echo")
	require.NoError(t, err)
	assert.Equal(t, []app.ListOptions{{Dir: ".", Name: "echo"}}, mock.list)
}

func TestCommands_Remove(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []app.RemoveOptions
		wantErr bool
	}{
		{
			name: "plugin version",
			args: []string{"remove", "echo", "--version", "1.0.0"},
			want: []app.RemoveOptions{{Dir: ".", Name: "echo", Version: "1.0.0"}},
		},
		{
			name: "core",
			args: []string{"remove", "--core"},
			want: []app.RemoveOptions{{Dir: ".", Core: true}},
		},
		{
			name: "all",
			args: []string{"remove", "--all"},
			want: []app.RemoveOptions{{Dir: ".", All: true}},
		},
		{
			name:    "all with name",
			args:    []string{"remove", "echo", "--all"},
			wantErr: true,
		},
		{
			name:    "core with name",
			args:    []string{"remove", "echo", "--core"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockApp{}
			_, err := execute(t, mock, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, mock.remove)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mock.remove)
		})
	}
}

func TestCommands_RemoveShowsUsage(t *testing.T) {
	mock := &mockApp{}
	out, err := execute(t, mock, "remove")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Empty(t, mock.remove)
}

func TestCommands_Watch(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "watch")
	require.NoError(t, err)
	assert.Equal(t, []app.WatchOptions{{Dir: "."}}, mock.watch)
}

func TestCommands_Worker(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock, nil)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetInput(strings.NewReader(`{"packageName":"echo"}`))
	cli.SetArgs([]string{"worker", "install"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.JSONEq(t, `{"packageName":"echo"}`, mock.workerIn)
	assert.JSONEq(t, `{"version":"1.0.0"}`, out.String())
}

func TestCommands_LogFlags(t *testing.T) {
	s := &settings{}
	cli := commands.New(&mockApp{}, s)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"load", "--verbose", "--json-logs"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, s.verbose)
	assert.True(t, s.json)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
