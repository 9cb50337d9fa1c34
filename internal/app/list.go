package app

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/engine/pkgmanager"
	"go.trai.ch/devd/internal/ui/output"
	"go.trai.ch/devd/internal/ui/style"
)

// ListOptions configuration for the List method.
type ListOptions struct {
	Dir string
	// Name limits the listing to one package; "core" selects the core.
	Name string
}

type listRow struct {
	name    string
	version string
	compat  string
	status  string
	ok      bool
}

// List prints the installed versions of the core and the plugins, and whether
// each one accepts the current host. It works offline.
func (a *App) List(_ context.Context, opts ListOptions) error {
	session, err := a.Open(opts.Dir)
	if err != nil {
		return err
	}
	defer session.Close()

	var rows []listRow
	if opts.Name == "" || opts.Name == domain.CoreName {
		coreRows, err := installedRows(session.core)
		if err != nil {
			return err
		}
		rows = append(rows, coreRows...)
	}

	host, err := session.localPluginHost()
	if err != nil {
		return err
	}
	names, err := session.pluginNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if opts.Name != "" && opts.Name != name {
			continue
		}
		manager, err := session.plugin(name, host)
		if err != nil {
			return err
		}
		pluginRows, err := installedRows(manager)
		if err != nil {
			return err
		}
		rows = append(rows, pluginRows...)
	}

	renderTable(a.out, rows)
	return nil
}

func installedRows(manager *pkgmanager.Manager) ([]listRow, error) {
	installed, err := manager.Installed()
	if err != nil {
		return nil, err
	}
	name := manager.Identity().Name
	if len(installed) == 0 {
		return []listRow{{name: name, version: "-", compat: "-", status: "not installed"}}, nil
	}

	rows := make([]listRow, 0, len(installed))
	for i, v := range installed {
		row := listRow{version: v.Version, compat: v.Range, ok: v.Compatible}
		if i == 0 {
			row.name = name
		}
		if v.Compatible {
			row.status = style.Check + " compatible"
		} else {
			row.status = style.Cross + " incompatible"
		}
		if v.Latest {
			row.status += " (latest)"
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func renderTable(w io.Writer, rows []listRow) {
	r := output.Renderer(w)
	heading := r.NewStyle().Inherit(style.Heading)
	muted := r.NewStyle().Inherit(style.Muted)
	good := r.NewStyle().Inherit(style.Compatible)
	bad := r.NewStyle().Inherit(style.Incompatible)

	header := listRow{name: "PACKAGE", version: "VERSION", compat: "RANGE", status: "STATUS"}
	widths := [3]int{}
	for _, row := range append([]listRow{header}, rows...) {
		for i, cell := range []string{row.name, row.version, row.compat} {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	cell := func(s lipgloss.Style, text string, width int) string {
		return s.Width(width + 2).Render(text)
	}

	var b strings.Builder
	b.WriteString(cell(heading, header.name, widths[0]))
	b.WriteString(cell(heading, header.version, widths[1]))
	b.WriteString(cell(heading, header.compat, widths[2]))
	b.WriteString(heading.Render(header.status))
	b.WriteString("\n")

	plain := r.NewStyle()
	for _, row := range rows {
		status := bad
		switch {
		case row.ok:
			status = good
		case row.version == "-":
			status = muted
		}
		b.WriteString(cell(plain, row.name, widths[0]))
		b.WriteString(cell(plain, row.version, widths[1]))
		b.WriteString(cell(muted, row.compat, widths[2]))
		b.WriteString(status.Render(row.status))
		b.WriteString("\n")
	}
	_, _ = io.WriteString(w, b.String())
}

// localPluginHost returns the newest installed core version that accepts the
// launcher, without touching the network.
func (s *Session) localPluginHost() (string, error) {
	installed, err := s.core.Installed()
	if err != nil {
		return "", err
	}
	for _, v := range slices.Backward(installed) {
		if v.Compatible {
			return v.Version, nil
		}
	}
	return s.host, nil
}

// pluginNames returns the configured plugins followed by any other plugin in
// the store, each once.
func (s *Session) pluginNames() ([]string, error) {
	stored, err := s.factory.Plugins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.config.Plugins)+len(stored))
	for _, p := range s.config.Plugins {
		names = append(names, p.Name)
	}
	slices.Sort(stored)
	for _, name := range stored {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names, nil
}
