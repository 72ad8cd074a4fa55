package game

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// AssetWatcher watches the asset directory and reports which paddle texture
// changed. It never touches the textures itself; the game loop drains
// Reloads and reloads on its own goroutine.
type AssetWatcher struct {
	dir      string
	delay    time.Duration
	log      zerolog.Logger
	reloads  chan PlayerId
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	debounce map[PlayerId]*time.Timer
}

// NewAssetWatcher starts watching dir. Writes to one file within delay of
// each other produce a single reload.
func NewAssetWatcher(dir string, delay time.Duration, log zerolog.Logger) (*AssetWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create asset watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &AssetWatcher{
		dir:      dir,
		delay:    delay,
		log:      log,
		reloads:  make(chan PlayerId, 4),
		watcher:  watcher,
		debounce: make(map[PlayerId]*time.Timer),
	}, nil
}

// Reloads delivers the players whose texture file changed.
func (w *AssetWatcher) Reloads() <-chan PlayerId {
	return w.reloads
}

// Run forwards file events until ctx is done, then closes the watcher.
func (w *AssetWatcher) Run(ctx context.Context) {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			player, ok := w.playerFor(event.Name)
			if !ok {
				continue
			}
			w.schedule(ctx, player)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("asset watcher")
		}
	}
}

func (w *AssetWatcher) playerFor(path string) (PlayerId, bool) {
	for _, p := range AllPlayers() {
		if filepath.Base(path) == filepath.Base(AssetPath(w.dir, p)) {
			return p, true
		}
	}
	return 0, false
}

func (w *AssetWatcher) schedule(ctx context.Context, player PlayerId) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.debounce[player]; ok {
		t.Stop()
	}
	w.debounce[player] = time.AfterFunc(w.delay, func() {
		select {
		case w.reloads <- player:
		case <-ctx.Done():
		}
	})
}

func (w *AssetWatcher) stop() {
	w.mu.Lock()
	for _, t := range w.debounce {
		t.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}
