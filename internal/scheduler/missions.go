package scheduler

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"gaia/internal/model"
)

// Mission is one standing watch entry: an area the platform monitors daily.
type Mission struct {
	Name   string     `yaml:"name"`
	Sensor string     `yaml:"sensor"`
	BBox   model.BBox `yaml:"bbox"`
}

type missionFile struct {
	Missions []Mission `yaml:"missions"`
}

var ErrNoMissions = errors.New("mission file has no missions")

// WatchList holds the current mission set, reloading it when the backing
// YAML file changes. A reload that fails to parse keeps the last good set.
type WatchList struct {
	path string

	mu       sync.RWMutex
	missions []Mission

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// LoadWatchList reads the mission file and starts watching it for changes.
func LoadWatchList(path string) (*WatchList, error) {
	wl := &WatchList{path: path, done: make(chan struct{})}
	if err := wl.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start mission watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, which drops a
	// watch held on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch mission dir: %w", err)
	}
	wl.watcher = watcher
	go wl.watchLoop()
	return wl, nil
}

// Missions returns the current mission set.
func (wl *WatchList) Missions() []Mission {
	wl.mu.RLock()
	defer wl.mu.RUnlock()
	out := make([]Mission, len(wl.missions))
	copy(out, wl.missions)
	return out
}

// Close stops watching the mission file.
func (wl *WatchList) Close() error {
	close(wl.done)
	if wl.watcher != nil {
		return wl.watcher.Close()
	}
	return nil
}

func (wl *WatchList) reload() error {
	raw, err := os.ReadFile(wl.path)
	if err != nil {
		return fmt.Errorf("read mission file: %w", err)
	}

	var mf missionFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return fmt.Errorf("parse mission file: %w", err)
	}
	if len(mf.Missions) == 0 {
		return ErrNoMissions
	}
	for _, m := range mf.Missions {
		if m.Name == "" {
			return fmt.Errorf("mission without a name")
		}
		if m.Sensor != model.SensorOptical && m.Sensor != model.SensorRadar {
			return fmt.Errorf("mission %s: unknown sensor %q", m.Name, m.Sensor)
		}
		if !m.BBox.Valid() {
			return fmt.Errorf("mission %s: invalid bbox %v", m.Name, m.BBox)
		}
	}

	wl.mu.Lock()
	wl.missions = mf.Missions
	wl.mu.Unlock()
	return nil
}

func (wl *WatchList) watchLoop() {
	for {
		select {
		case <-wl.done:
			return
		case ev, ok := <-wl.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(wl.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := wl.reload(); err != nil {
				// Keep the last good mission set.
				log.Printf(`{"level":"error","msg":"mission reload failed","file":"%s","error":"%v"}`, wl.path, err)
				continue
			}
			log.Printf(`{"level":"info","msg":"mission watch list reloaded","file":"%s","missions":%d}`, wl.path, len(wl.Missions()))
		case err, ok := <-wl.watcher.Errors:
			if !ok {
				return
			}
			log.Printf(`{"level":"error","msg":"mission watcher error","error":"%v"}`, err)
		}
	}
}
