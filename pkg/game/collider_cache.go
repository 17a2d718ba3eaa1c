package game

import (
	"fmt"
	"hash/crc32"
	"log"

	"github.com/decker502/beancounters/internal/collider"
	"github.com/quasilyte/gdata/v2"
)

// 存储路径常量
const collidersObject = "colliders"

// ColliderCache 运行时从源图片派生的碰撞掩码缓存
//
// 掩码以 .col 编码保存在 gdata 对象 "colliders" 下，
// 属性名为 "<资源ID>_<源图片CRC32>"，源图片变化后旧条目自然失效。
type ColliderCache struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
}

// NewColliderCache 创建掩码缓存
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，每次都重新生成）
func NewColliderCache(gdataManager *gdata.Manager) *ColliderCache {
	return &ColliderCache{gdataManager: gdataManager}
}

// cacheKey 由资源ID和源图片内容生成属性名
func cacheKey(id string, source []byte) string {
	return fmt.Sprintf("%s_%08x", id, crc32.ChecksumIEEE(source))
}

// Load 读取缓存的掩码
//
// 返回：
//   - *collider.BitMask: 缓存命中时的掩码
//   - bool: 是否命中；降级模式、条目不存在或条目损坏都视为未命中
func (c *ColliderCache) Load(id string, source []byte) (*collider.BitMask, bool) {
	if c == nil || c.gdataManager == nil {
		return nil, false
	}

	key := cacheKey(id, source)
	if !c.gdataManager.ObjectPropExists(collidersObject, key) {
		return nil, false
	}

	data, err := c.gdataManager.LoadObjectProp(collidersObject, key)
	if err != nil {
		log.Printf("[ColliderCache] Warning: failed to load cached mask %s: %v", key, err)
		return nil, false
	}

	m := new(collider.BitMask)
	if err := m.UnmarshalBinary(data); err != nil {
		// 损坏的条目会在下一次 Store 时被覆盖
		log.Printf("[ColliderCache] Warning: discarding cached mask %s: %v", key, err)
		return nil, false
	}
	return m, true
}

// Store 保存掩码
//
// 降级模式下直接返回 nil。
func (c *ColliderCache) Store(id string, source []byte, m *collider.BitMask) error {
	if c == nil || c.gdataManager == nil {
		return nil
	}

	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode mask %s: %w", id, err)
	}

	key := cacheKey(id, source)
	if err := c.gdataManager.SaveObjectProp(collidersObject, key, data); err != nil {
		return fmt.Errorf("failed to save cached mask %s: %w", key, err)
	}

	log.Printf("[ColliderCache] Cached mask %s (%d bytes)", key, len(data))
	return nil
}
