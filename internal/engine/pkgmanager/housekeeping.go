package pkgmanager

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
)

// UpdateTimeout bounds one background auto-update.
const UpdateTimeout = 5 * time.Minute

// keepAfterLoad returns the versions retention keeps besides the latest
// installed one: the version being loaded and, for plugins, the one in use.
func (m *Manager) keepAfterLoad(version string) []string {
	keep := []string{version}
	if !m.identity.IsCore {
		m.mu.Lock()
		keep = append(keep, m.current)
		m.mu.Unlock()
	}
	return keep
}

// retain deletes installed versions other than keep, the latest installed
// version and versions with a load in progress. Failures are logged.
func (m *Manager) retain(keep ...string) {
	if !m.factory.opts.AutoClean {
		return
	}

	versions, err := m.factory.store.ListVersions(m.root)
	if err != nil {
		m.factory.logger.Debug(fmt.Sprintf("%s: retention skipped: %v", m.identity.Name, err))
		return
	}

	kept := make(map[string]bool, len(keep)+1)
	for _, v := range keep {
		if v != "" {
			kept[v] = true
		}
	}
	if latest, ok := policy.PickLatest(versions); ok {
		kept[latest] = true
	}

	m.mu.Lock()
	for v := range m.active {
		kept[v] = true
	}
	m.mu.Unlock()

	for _, v := range versions {
		if kept[v] {
			continue
		}
		if err := m.factory.store.Remove(m.root, v); err != nil {
			m.factory.logger.Debug(fmt.Sprintf("%s@%s: retention failed: %v", m.identity.Name, v, err))
			continue
		}
		m.factory.logger.Debug(fmt.Sprintf("removed %s@%s", m.identity.Name, v))
	}
}

// scheduleUpdate prefetches a newer compatible remote version in the
// background. It never affects the load that triggered it.
func (m *Manager) scheduleUpdate(ctx context.Context, resolved string) {
	m.factory.updates.Add(1)
	go func() {
		defer m.factory.updates.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), UpdateTimeout)
		defer cancel()

		if err := m.update(ctx, resolved); err != nil {
			m.factory.logger.Debug(fmt.Sprintf("%s: auto-update failed: %v", m.identity.Name, err))
		}
	}()
}

func (m *Manager) update(ctx context.Context, resolved string) error {
	ctx, span := m.factory.tracer.Start(ctx, "pkgmanager.auto_update",
		ports.WithAttribute("package", m.identity.Name),
		ports.WithAttribute("current", resolved),
	)
	defer span.End()

	candidates, err := m.queryVersions(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	best, ok := policy.BestFit(candidates, m.host)
	if !ok || !policy.IsNewer(best.Version, resolved) || m.factory.store.Exists(m.root, best.Version) {
		return nil
	}

	span.SetAttribute("version", best.Version)
	m.acquire(best.Version)
	defer m.release(best.Version)

	if err := m.install(ctx, m.identity.Source, best.Version); err != nil {
		span.RecordError(err)
		return err
	}
	m.factory.logger.Debug(fmt.Sprintf("%s: prefetched %s", m.identity.Name, best.Version))

	m.mu.Lock()
	keep := []string{m.current}
	if !m.identity.IsCore {
		keep = append(keep, m.previous)
	}
	m.mu.Unlock()
	m.retain(append(keep, resolved)...)
	return nil
}
