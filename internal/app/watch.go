package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/devd/internal/adapters/watcher"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Dir string
	// Window is the debounce window; zero means watcher.DefaultDebounceWindow.
	Window time.Duration
	// OnReload, when set, receives every successful reload.
	OnReload func(*Loaded)
}

// Watch loads the project, then reloads the modules whose files change until
// ctx is cancelled.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	session, err := a.Open(opts.Dir)
	if err != nil {
		return err
	}
	defer session.Close()

	loaded, err := session.Load(ctx)
	if err != nil {
		return err
	}
	a.printLoaded(loaded)

	if err := a.watcher.Start(ctx, modulePaths(loaded)...); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	var mu sync.Mutex
	reload := func(changed []string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}

		for _, path := range stalePaths(loaded, changed) {
			a.modules.Invalidate(path)
		}
		next, err := session.Load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Error(err)
			}
			return
		}
		loaded = next
		if err := a.watcher.Start(ctx, modulePaths(loaded)...); err != nil {
			a.logger.Warn("file watcher: " + err.Error())
		}
		a.logger.Info(fmt.Sprintf("reloaded %d changed file(s)", len(changed)))
		if opts.OnReload != nil {
			opts.OnReload(loaded)
		}
	}

	window := opts.Window
	if window == 0 {
		window = watcher.DefaultDebounceWindow
	}
	debouncer := watcher.NewDebouncer(window, reload)
	// Runs before the watcher stops and the session closes.
	defer debouncer.Stop()

	a.logger.Info("watching for changes")
	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}
	return nil
}

func modulePaths(loaded *Loaded) []string {
	paths := make([]string, 0, len(loaded.Plugins)+1)
	for _, module := range append([]Module{loaded.Core}, loaded.Plugins...) {
		paths = append(paths, module.Package.Path)
	}
	return paths
}

// stalePaths returns the module roots that contain one of the changed paths.
func stalePaths(loaded *Loaded, changed []string) []string {
	var stale []string
	for _, root := range modulePaths(loaded) {
		prefix := filepath.Clean(root) + string(filepath.Separator)
		for _, path := range changed {
			if path == root || strings.HasPrefix(filepath.Clean(path), prefix) {
				stale = append(stale, root)
				break
			}
		}
	}
	return stale
}
