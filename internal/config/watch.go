package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// reloadDebounce coalesces the burst of filesystem events editors emit for
// a single save into one reload.
const reloadDebounce = 200 * time.Millisecond

// Watch hot-reloads the config file at path until ctx is cancelled. Each
// successful reload swaps the in-memory config and runs the callbacks from
// RegisterOnReload; a file that no longer parses keeps the previous config
// in effect.
func Watch(ctx context.Context, path string) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		slog.Warn("config watch disabled, initial read failed", "path", path, "error", err)
		return
	}

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			slog.Warn("config reload failed, keeping previous", "path", path, "error", err)
			return
		}
		Set(cfg)
		notifyReload(cfg)
		slog.Info("config reloaded", "path", path)
	}

	var debounce *time.Timer
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		if filepath.Clean(e.Name) != filepath.Clean(path) {
			return
		}
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(reloadDebounce, reload)
	})
	v.WatchConfig()

	<-ctx.Done()
}
