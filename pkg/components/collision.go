package components

import "github.com/decker502/beancounters/internal/collider"

// CollisionLayer 碰撞层，决定命中接盘者后的结果
type CollisionLayer int

const (
	// LayerCatcher 接盘者（企鹅），其他层都与它做判定
	LayerCatcher CollisionLayer = iota
	// LayerBag 豆子袋，接住后计数
	LayerBag
	// LayerHazard 铁砧、鱼、花盆等危险物
	LayerHazard
	// LayerBonus 奖励物（1UP）
	LayerBonus
)

// String 返回碰撞层名称，用于日志
func (l CollisionLayer) String() string {
	switch l {
	case LayerCatcher:
		return "catcher"
	case LayerBag:
		return "bag"
	case LayerHazard:
		return "hazard"
	case LayerBonus:
		return "bonus"
	default:
		return "unknown"
	}
}

// CollisionComponent 实体的像素级碰撞数据
//
// Mask 借用自 game.ColliderManager，不归组件所有，组件销毁时不需要释放。
type CollisionComponent struct {
	MaskID string            // 掩码资源ID（如 "bag_3"），便于调试
	Mask   *collider.BitMask // 碰撞掩码
	Layer  CollisionLayer
}
