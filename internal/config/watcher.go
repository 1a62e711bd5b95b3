package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/logger"
)

// WatchLogLevel watches the config file and applies log-level changes to the
// running logger without a restart. It blocks until ctx is cancelled.
func WatchLogLevel(ctx context.Context, configFile string, log logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// per-file watches.
	if err := watcher.Add(filepath.Dir(configFile)); err != nil {
		return err
	}

	target := filepath.Clean(configFile)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadConfig(filepath.Dir(configFile))
			if err != nil {
				log.Warn(ctx, "Ignoring invalid config change", logger.Error(err))
				continue
			}
			log.SetLevel(constants.LogLevel(cfg.Log.Level))
			log.Info(ctx, "Applied log level from config change",
				logger.String("level", cfg.Log.Level),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "Config watcher error", logger.Error(err))
		}
	}
}
