package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csv2js/state"
)

// Watch converts sources and keeps converting them again whenever local
// sources change, until interrupted.
func Watch(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch").With(zap.String("run", env.RunID))

	j, err := prepareJob(cmd, env, log)
	if err != nil {
		return err
	}
	if len(j.dst) == 0 {
		return errors.New("watch requires destination")
	}

	targets, err := newWatchTargets(j.args)
	if err != nil {
		return err
	}

	log.Info("Watching", zap.Strings("sources", j.args), zap.String("destination", j.dst), zap.Stringer("format", j.format))
	return watch(ctx, j, targets, env.Cfg.Watch.Debounce, log)
}

// watchTargets describes what file system changes should trigger conversion.
type watchTargets struct {
	dirs  []string        // to subscribe to
	trees map[string]bool // directories belonging to directory sources
	files map[string]bool // file and archive sources
}

func newWatchTargets(args []string) (*watchTargets, error) {
	t := &watchTargets{trees: make(map[string]bool), files: make(map[string]bool)}
	seen := make(map[string]bool)
	subscribe := func(d string) {
		if !seen[d] {
			seen[d] = true
			t.dirs = append(t.dirs, d)
		}
	}

	for _, arg := range args {
		if isURL(arg) {
			continue
		}
		src, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		// archive with path inside: back off to existing part
		head := src
		fi, err := os.Stat(head)
		for err != nil {
			parent := filepath.Dir(head)
			if parent == head {
				return nil, fmt.Errorf("source %s does not exist", arg)
			}
			head = parent
			fi, err = os.Stat(head)
		}
		if !fi.IsDir() {
			t.files[head] = true
			subscribe(filepath.Dir(head))
			continue
		}
		err = filepath.WalkDir(head, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				t.trees[path] = true
				subscribe(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(t.dirs) == 0 {
		return nil, errors.New("watch requires local sources")
	}
	return t, nil
}

// relevant reports if event may change conversion result.
func (t *watchTargets) relevant(ev fsnotify.Event, output string) bool {
	if ev.Name == output || ev.Op == fsnotify.Chmod {
		return false
	}
	if t.files[ev.Name] {
		return true
	}
	if !t.trees[filepath.Dir(ev.Name)] {
		return false
	}
	return t.trees[ev.Name] || isTabularName(ev.Name) || strings.EqualFold(filepath.Ext(ev.Name), ".zip") || isNewDir(ev)
}

func isNewDir(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) {
		return false
	}
	fi, err := os.Stat(ev.Name)
	return err == nil && fi.IsDir()
}

func watch(ctx context.Context, j *job, targets *watchTargets, debounce time.Duration, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, d := range targets.dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("unable to watch %s: %w", d, err)
		}
	}

	var output string
	rebuild := func() {
		r, err := convert(ctx, j, log)
		if err != nil {
			log.Error("Conversion failed", zap.Error(err))
			return
		}
		output = r.output
		// following runs replace our own output
		env.Overwrite = true
	}
	rebuild()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watching stopped")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets.relevant(ev, output) {
				continue
			}
			log.Debug("Change detected", zap.Stringer("event", ev))
			if isNewDir(ev) {
				targets.trees[ev.Name] = true
				if err := watcher.Add(ev.Name); err != nil {
					log.Warn("Unable to watch new directory", zap.String("dir", ev.Name), zap.Error(err))
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			rebuild()
		}
	}
}
