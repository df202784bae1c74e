package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vkspin/engine/assets/loaders"
	"github.com/spaghettifunk/vkspin/engine/core"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the shader directory and, when watching, reports
// writes to known shader files on Changes.
type AssetManager struct {
	dir     string
	watch   bool
	assets  map[string]AssetInfo
	loaders map[ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan struct{}
}

func NewAssetManager(dir string, watch bool) *AssetManager {
	am := &AssetManager{
		dir:     dir,
		watch:   watch,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[ResourceType]Loader),
		done:    make(chan struct{}),
		changes: make(chan struct{}, 1),
	}
	am.registerLoader(ResourceTypeShader, &loaders.ShaderLoader{})
	return am
}

func (am *AssetManager) Initialize() error {
	if am.isClosed {
		return ErrClosed
	}
	entries, err := os.ReadDir(am.dir)
	if err != nil {
		return fmt.Errorf("reading asset directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			am.handleFileEvent(filepath.Join(am.dir, entry.Name()))
		}
	}

	if !am.watch {
		return nil
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsWatch.Add(am.dir); err != nil {
		fsWatch.Close()
		return err
	}
	am.fsnotify = fsWatch

	am.wg.Add(1)
	go am.start()
	core.LogInfo("Watching '%s' for shader changes.", am.dir)
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadShader reads name from the shader directory as SPIR-V words.
func (am *AssetManager) LoadShader(name string) ([]uint32, error) {
	path := filepath.Join(am.dir, name)
	if determineAssetType(path) != ResourceTypeShader {
		return nil, fmt.Errorf("not a shader binary: %s", path)
	}

	loader, loaderExists := am.loaders[ResourceTypeShader]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", ResourceTypeShader)
	}
	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	defer loader.Unload(res)

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: ResourceTypeShader, LastLoaded: time.Now()}
	am.mutex.Unlock()

	core.LogDebug("Loaded shader '%s' (%d bytes).", res.Name, res.DataSize)
	return res.Data.([]uint32), nil
}

// LoadShaders loads the vertex and fragment binaries.
func (am *AssetManager) LoadShaders(vertName, fragName string) (vert, frag []uint32, err error) {
	if vert, err = am.LoadShader(vertName); err != nil {
		return nil, nil, err
	}
	if frag, err = am.LoadShader(fragName); err != nil {
		return nil, nil, err
	}
	return vert, frag, nil
}

// Changes receives a value after one or more indexed shaders were written.
// Bursts of writes are coalesced into a single notification.
func (am *AssetManager) Changes() <-chan struct{} {
	return am.changes
}

func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}

// Shutdown stops the watcher. It is safe to call more than once.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && am.handleFileEvent(e.Name) {
				am.notify()
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) notify() {
	select {
	case am.changes <- struct{}{}:
	default:
	}
}

// handleFileEvent indexes path and reports whether it is a shader.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := determineAssetType(path)
	if assetType == ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".spv":
		return ResourceTypeShader
	default:
		return ResourceTypeNone
	}
}
