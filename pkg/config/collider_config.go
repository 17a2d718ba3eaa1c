package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// ColliderConfigPath 默认的碰撞掩码配置文件路径
const ColliderConfigPath = "data/colliders.yaml"

// TrackKind 轨迹表类型
//
// 原版中两种轨迹点的形状不同：
//   - bag: 每帧 [精灵编号, x, y]，袋子在飞行过程中会切换精灵
//   - object: 每帧 [x, y]，其他掉落物只有位置
type TrackKind string

const (
	TrackKindBag    TrackKind = "bag"
	TrackKindObject TrackKind = "object"
)

// ColliderConfig 碰撞掩码资源表
//
// 对应 data/colliders.yaml：
//
//	version: "1.0"
//	base_path: data/collider
//	colliders:
//	  - id: bag_3
//	    path: bag_3.col
//	    source: images/bag_3.png
//	blocks:
//	  - id: hazard_block
//	    width: 9
//	    height: 45
//	catcher: [penguin_1, penguin_2]
//	tracks:
//	  - id: anvil
//	    kind: object
//	    collider: hazard_block
//	    points: [[631, 276], [609, 226]]
//	    hits:
//	      start: 0
//	      points: [[692, 298], [669, 245]]
type ColliderConfig struct {
	Version   string          `yaml:"version"`   // 配置文件版本
	BasePath  string          `yaml:"base_path"` // .col 文件所在目录
	Colliders []ColliderAsset `yaml:"colliders"` // 从 .col 文件加载的掩码
	Blocks    []BlockCollider `yaml:"blocks"`    // 运行时生成的实心矩形掩码
	Catcher   []string        `yaml:"catcher"`   // 接盘者掩码，第 n 个用于叠了 n 个袋子时，超出取最后一个
	Tracks    []TrackConfig   `yaml:"tracks"`    // 掉落物逐帧轨迹
}

// ColliderAsset 一个 .col 掩码资源
type ColliderAsset struct {
	ID     string `yaml:"id"`               // 资源ID，如 "penguin_1"
	Path   string `yaml:"path"`             // 相对 base_path 的 .col 路径
	Source string `yaml:"source,omitempty"` // 生成掩码用的源图片（可选）
}

// BlockCollider 实心矩形掩码（危险物没有精灵图片，只用矩形判定）
type BlockCollider struct {
	ID     string `yaml:"id"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// TrackConfig 一条掉落物轨迹
type TrackConfig struct {
	ID       string    `yaml:"id"`
	Kind     TrackKind `yaml:"kind"`
	Collider string    `yaml:"collider"` // 判定使用的掩码ID
	Points   [][]int   `yaml:"points"`

	// Hits 可选的判定窗口；为空时每一帧都用 Collider 在 Points 位置判定
	Hits *HitWindow `yaml:"hits,omitempty"`
}

// HitWindow 轨迹的判定窗口
//
// 只有第 Start 到 Start+len(Points)-1 帧参与碰撞判定，
// 第 Start+i 帧使用 Colliders[i]（为空时用轨迹的 collider）放在 Points[i]。
// 危险物的判定位置和精灵位置不同，鱼还会逐帧换用更窄的掩码。
type HitWindow struct {
	Start     int      `yaml:"start"`
	Colliders []string `yaml:"colliders,omitempty"`
	Points    [][]int  `yaml:"points"`
}

// DefaultCatcherCollider 配置中没有 catcher 时使用的接盘者掩码
const DefaultCatcherCollider = "penguin_1"

// LoadColliderConfig 从磁盘加载碰撞掩码配置
//
// 参数:
//   - path: 配置文件路径（如 "data/colliders.yaml"）
//
// 返回:
//   - *ColliderConfig: 已校验的配置
//   - error: 读取、解析或校验失败时返回错误
func LoadColliderConfig(path string) (*ColliderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collider config: %w", err)
	}
	return ParseColliderConfig(data)
}

// ParseColliderConfig 解析 YAML 格式的碰撞掩码配置并校验
func ParseColliderConfig(data []byte) (*ColliderConfig, error) {
	var config ColliderConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse collider config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collider config: %w", err)
	}

	return &config, nil
}

// Validate 校验配置
//
// 检查项：
//   - 掩码ID（包括实心块）非空且不重复
//   - .col 路径非空
//   - 实心块宽高为正
//   - 轨迹类型合法，bag 轨迹点为三元组、object 轨迹点为二元组
//   - 轨迹和接盘者引用的掩码ID存在
//   - 判定窗口落在轨迹帧范围内，逐帧掩码与判定点数量一致
func (c *ColliderConfig) Validate() error {
	ids := make(map[string]bool)

	for i, asset := range c.Colliders {
		if asset.ID == "" {
			return fmt.Errorf("collider #%d has empty id", i)
		}
		if ids[asset.ID] {
			return fmt.Errorf("duplicate collider id '%s'", asset.ID)
		}
		if asset.Path == "" {
			return fmt.Errorf("collider '%s' has empty path", asset.ID)
		}
		ids[asset.ID] = true
	}

	for i, block := range c.Blocks {
		if block.ID == "" {
			return fmt.Errorf("block #%d has empty id", i)
		}
		if ids[block.ID] {
			return fmt.Errorf("duplicate collider id '%s'", block.ID)
		}
		if block.Width <= 0 || block.Height <= 0 {
			return fmt.Errorf("block '%s' size must be positive, got %dx%d", block.ID, block.Width, block.Height)
		}
		ids[block.ID] = true
	}

	trackIDs := make(map[string]bool)
	for i, track := range c.Tracks {
		if track.ID == "" {
			return fmt.Errorf("track #%d has empty id", i)
		}
		if trackIDs[track.ID] {
			return fmt.Errorf("duplicate track id '%s'", track.ID)
		}
		trackIDs[track.ID] = true

		if !ids[track.Collider] {
			return fmt.Errorf("track '%s' references unknown collider '%s'", track.ID, track.Collider)
		}

		var arity int
		switch track.Kind {
		case TrackKindBag:
			arity = 3
		case TrackKindObject:
			arity = 2
		default:
			return fmt.Errorf("track '%s' has unknown kind '%s'", track.ID, track.Kind)
		}

		if len(track.Points) == 0 {
			return fmt.Errorf("track '%s' has no points", track.ID)
		}
		for j, p := range track.Points {
			if len(p) != arity {
				return fmt.Errorf("track '%s' point #%d has %d values, expected %d", track.ID, j, len(p), arity)
			}
		}

		if track.Hits != nil {
			if err := track.Hits.validate(track.ID, len(track.Points), ids); err != nil {
				return err
			}
		}
	}

	for _, id := range c.Catcher {
		if !ids[id] {
			return fmt.Errorf("catcher references unknown collider '%s'", id)
		}
	}

	return nil
}

func (h *HitWindow) validate(trackID string, frames int, ids map[string]bool) error {
	if len(h.Points) == 0 {
		return fmt.Errorf("track '%s' hit window has no points", trackID)
	}
	if h.Start < 0 || h.Start+len(h.Points) > frames {
		return fmt.Errorf("track '%s' hit window [%d, %d) outside %d frames", trackID, h.Start, h.Start+len(h.Points), frames)
	}
	for j, p := range h.Points {
		if len(p) != 2 {
			return fmt.Errorf("track '%s' hit point #%d has %d values, expected 2", trackID, j, len(p))
		}
	}
	if len(h.Colliders) != 0 && len(h.Colliders) != len(h.Points) {
		return fmt.Errorf("track '%s' hit window has %d colliders for %d points", trackID, len(h.Colliders), len(h.Points))
	}
	for _, id := range h.Colliders {
		if !ids[id] {
			return fmt.Errorf("track '%s' hit window references unknown collider '%s'", trackID, id)
		}
	}
	return nil
}

// CatcherColliders 返回接盘者掩码列表，未配置时只有 DefaultCatcherCollider
func (c *ColliderConfig) CatcherColliders() []string {
	if len(c.Catcher) == 0 {
		return []string{DefaultCatcherCollider}
	}
	return c.Catcher
}

// ColliderPath 返回资源的 .col 完整路径（使用正斜杠，兼容 embed.FS）
func (c *ColliderConfig) ColliderPath(asset ColliderAsset) string {
	if c.BasePath == "" {
		return asset.Path
	}
	return path.Join(c.BasePath, asset.Path)
}

// FindTrack 根据ID查找轨迹
func (c *ColliderConfig) FindTrack(id string) (*TrackConfig, bool) {
	for i := range c.Tracks {
		if c.Tracks[i].ID == id {
			return &c.Tracks[i], true
		}
	}
	return nil, false
}
