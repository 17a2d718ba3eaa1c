package game

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/decker502/beancounters/pkg/config"
)

// ColliderManager is the runtime table of every collision mask the game uses.
//
// All masks are loaded once at startup by LoadAll, on the main goroutine,
// and are read-only afterwards. The manager owns the masks; callers only
// borrow them through GetCollider and must not keep them beyond the
// manager's lifetime.
//
// Masks come from three places:
//   - .col files listed under "colliders" in data/colliders.yaml
//   - the asset's source image when its .col file is missing (derived with
//     collider.FromImage and remembered in the ColliderCache)
//   - solid blocks listed under "blocks"
//
// Usage:
//
//	cm := NewColliderManager(fsys)
//	if err := cm.LoadColliderConfig(config.ColliderConfigPath); err != nil {
//	    log.Fatalf("Failed to load collider config: %v", err)
//	}
//	if err := cm.LoadAll(); err != nil {
//	    log.Fatalf("Failed to load colliders: %v", err)
//	}
//	penguin := cm.GetCollider("penguin_1")
type ColliderManager struct {
	fsys   fs.FS                  // Asset file system, paths start with "data/"
	config *config.ColliderConfig // Parsed collider table
	cache  *ColliderCache         // Optional cache for masks derived from images
	masks  map[string]*collider.BitMask
}

// NewColliderManager creates an empty manager reading assets from fsys.
func NewColliderManager(fsys fs.FS) *ColliderManager {
	return &ColliderManager{
		fsys:  fsys,
		masks: make(map[string]*collider.BitMask),
	}
}

// LoadColliderConfig reads and validates the collider table from the manager's
// file system.
func (cm *ColliderManager) LoadColliderConfig(configPath string) error {
	data, err := fs.ReadFile(cm.fsys, configPath)
	if err != nil {
		return fmt.Errorf("failed to read collider config %s: %w", configPath, err)
	}

	cfg, err := config.ParseColliderConfig(data)
	if err != nil {
		return err
	}

	cm.config = cfg
	log.Printf("[ColliderManager] Loaded collider config: %d colliders, %d blocks, %d tracks",
		len(cfg.Colliders), len(cfg.Blocks), len(cfg.Tracks))
	return nil
}

// SetConfig installs an already parsed table.
func (cm *ColliderManager) SetConfig(cfg *config.ColliderConfig) {
	cm.config = cfg
}

// SetCache enables the derived-mask cache. A nil cache disables it.
func (cm *ColliderManager) SetCache(cache *ColliderCache) {
	cm.cache = cache
}

// Config returns the loaded table, or nil before LoadColliderConfig.
func (cm *ColliderManager) Config() *config.ColliderConfig {
	return cm.config
}

// LoadAll loads every mask named by the table.
//
// Loading stops at the first failure. The returned error names the asset id
// and path, and wraps the underlying error so collider.ErrFormat,
// collider.ErrCorrupt and fs.ErrNotExist can be matched with errors.Is.
// On failure the table keeps only the masks loaded so far.
func (cm *ColliderManager) LoadAll() error {
	if cm.config == nil {
		return fmt.Errorf("collider config not loaded - call LoadColliderConfig first")
	}

	for _, asset := range cm.config.Colliders {
		m, err := cm.loadAsset(asset)
		if err != nil {
			return fmt.Errorf("failed to load collider %s (%s): %w", asset.ID, cm.config.ColliderPath(asset), err)
		}
		cm.masks[asset.ID] = m
	}

	for _, block := range cm.config.Blocks {
		cm.masks[block.ID] = collider.NewBlock(block.Width, block.Height)
	}

	log.Printf("[ColliderManager] Loaded %d masks", len(cm.masks))
	return nil
}

// loadAsset reads the .col file, falling back to the source image when the
// file does not exist.
func (cm *ColliderManager) loadAsset(asset config.ColliderAsset) (*collider.BitMask, error) {
	m, err := collider.Load(cm.fsys, cm.config.ColliderPath(asset))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || asset.Source == "" {
		return nil, err
	}

	log.Printf("[ColliderManager] %s has no .col file, deriving mask from %s", asset.ID, asset.Source)
	return cm.deriveFromSource(asset)
}

func (cm *ColliderManager) deriveFromSource(asset config.ColliderAsset) (*collider.BitMask, error) {
	source, err := fs.ReadFile(cm.fsys, asset.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image %s: %w", asset.Source, err)
	}

	if m, ok := cm.cache.Load(asset.ID, source); ok {
		return m, nil
	}

	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image %s: %w", asset.Source, err)
	}

	m := collider.FromImage(img)
	if err := cm.cache.Store(asset.ID, source, m); err != nil {
		// 缓存失败不影响本次加载
		log.Printf("[ColliderManager] Warning: %v", err)
	}
	return m, nil
}

// GetCollider returns the mask registered under id, or nil if there is none.
func (cm *ColliderManager) GetCollider(id string) *collider.BitMask {
	return cm.masks[id]
}

// Count returns the number of loaded masks.
func (cm *ColliderManager) Count() int {
	return len(cm.masks)
}
