package ecs

import "reflect"

// EntityID 是实体句柄
//
// 低 32 位是槽位索引，高 32 位是该槽位的代数（generation）。
// 实体销毁后槽位的代数加一，旧句柄随之失效，槽位可以安全复用。
// 代数从 1 开始，因此 0 永远不是合法句柄。
type EntityID uint64

// InvalidEntity 无效句柄
const InvalidEntity EntityID = 0

func newEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index 返回槽位索引
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation 返回句柄的代数
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}

// slot 实体槽位
type slot struct {
	generation uint32
	alive      bool
	components map[reflect.Type]interface{}
}

// EntityManager 管理所有实体和组件
//
// 实体存放在按索引寻址的槽位数组（arena）中，查询按槽位顺序返回，结果确定。
// 销毁是延迟的：DestroyEntity 只做标记，RemoveMarkedEntities 才真正释放槽位，
// 这样系统在一帧内遍历实体时可以放心销毁。
type EntityManager struct {
	slots []slot
	// 已释放、可复用的槽位索引
	freeList []uint32
	// 待删除的实体列表
	entitiesToDestroy []EntityID
	alive             int
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		slots:             make([]slot, 0, 64),
		freeList:          make([]uint32, 0),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回句柄
// 优先复用已释放的槽位
func (em *EntityManager) CreateEntity() EntityID {
	var index uint32
	if n := len(em.freeList); n > 0 {
		index = em.freeList[n-1]
		em.freeList = em.freeList[:n-1]
	} else {
		index = uint32(len(em.slots))
		em.slots = append(em.slots, slot{generation: 1})
	}

	s := &em.slots[index]
	s.alive = true
	s.components = make(map[reflect.Type]interface{})
	em.alive++
	return newEntityID(index, s.generation)
}

// lookup 返回句柄对应的存活槽位，句柄失效时返回 nil
func (em *EntityManager) lookup(id EntityID) *slot {
	index := id.Index()
	if int(index) >= len(em.slots) {
		return nil
	}
	s := &em.slots[index]
	if !s.alive || s.generation != id.Generation() {
		return nil
	}
	return s
}

// IsAlive 检查句柄是否仍指向存活的实体
// 已标记删除但尚未清理的实体仍视为存活
func (em *EntityManager) IsAlive(id EntityID) bool {
	return em.lookup(id) != nil
}

// Count 返回存活实体数量
func (em *EntityManager) Count() int {
	return em.alive
}

// DestroyEntity 标记实体待删除(不立即删除)
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// AddComponent 为实体添加组件，同类型组件会被替换
// 句柄失效时忽略
func (em *EntityManager) AddComponent(id EntityID, component interface{}) {
	if s := em.lookup(id); s != nil {
		s.components[reflect.TypeOf(component)] = component
	}
}

// RemoveMarkedEntities 清理所有标记删除的实体
// 同一实体被重复标记、或句柄已失效时只处理一次
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.entitiesToDestroy {
		s := em.lookup(id)
		if s == nil {
			continue
		}
		s.alive = false
		s.components = nil
		s.generation++
		em.freeList = append(em.freeList, id.Index())
		em.alive--
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
}

func (em *EntityManager) getComponent(id EntityID, componentType reflect.Type) (interface{}, bool) {
	s := em.lookup(id)
	if s == nil {
		return nil, false
	}
	comp, found := s.components[componentType]
	return comp, found
}

// entitiesWith 按槽位顺序返回拥有全部指定组件的存活实体
func (em *EntityManager) entitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	for i := range em.slots {
		s := &em.slots[i]
		if !s.alive {
			continue
		}
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := s.components[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, newEntityID(uint32(i), s.generation))
		}
	}

	return result
}
