package ecs

import (
	"testing"
)

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

type testVelocityComponent struct {
	VX, VY float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	if id1 == InvalidEntity || id2 == InvalidEntity {
		t.Error("Created entity should never be the invalid handle")
	}

	if id1.Index() != 0 || id2.Index() != 1 {
		t.Errorf("expected slots 0 and 1, got %d and %d", id1.Index(), id2.Index())
	}

	if id1.Generation() != 1 {
		t.Errorf("First generation should be 1, got %d", id1.Generation())
	}

	if em.Count() != 2 {
		t.Errorf("expected 2 live entities, got %d", em.Count())
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	// 添加组件
	em.AddComponent(id, &testPositionComponent{X: 100, Y: 200})

	// 获取组件
	pos, found := GetComponent[*testPositionComponent](em, id)
	if !found {
		t.Fatal("Component should be found")
	}
	if pos.X != 100 || pos.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", pos.X, pos.Y)
	}

	// 值类型与指针类型是不同的组件
	if _, found := GetComponent[testPositionComponent](em, id); found {
		t.Error("value type should not match pointer component")
	}
}

func TestHasAndRemoveComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	// 未添加组件前应该返回false
	if HasComponent[*testPositionComponent](em, id) {
		t.Error("Should not have component before adding")
	}

	em.AddComponent(id, &testPositionComponent{})
	if !HasComponent[*testPositionComponent](em, id) {
		t.Error("Should have component after adding")
	}

	RemoveComponent[*testPositionComponent](em, id)
	if HasComponent[*testPositionComponent](em, id) {
		t.Error("Should not have component after removing")
	}
}

func TestDestroyEntity(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testPositionComponent{})

	// 标记删除
	em.DestroyEntity(id)

	// 清理前实体仍存在
	if !em.IsAlive(id) || !HasComponent[*testPositionComponent](em, id) {
		t.Error("Entity should still exist before cleanup")
	}

	// 清理后实体消失
	em.RemoveMarkedEntities()
	if em.IsAlive(id) || HasComponent[*testPositionComponent](em, id) {
		t.Error("Entity should be removed after cleanup")
	}
	if em.Count() != 0 {
		t.Errorf("expected 0 live entities, got %d", em.Count())
	}
}

// TestStaleHandle 槽位复用后旧句柄不能访问新实体
func TestStaleHandle(t *testing.T) {
	em := NewEntityManager()
	old := em.CreateEntity()
	em.AddComponent(old, &testPositionComponent{X: 1})
	em.DestroyEntity(old)
	em.RemoveMarkedEntities()

	reused := em.CreateEntity()
	if reused.Index() != old.Index() {
		t.Fatalf("expected slot %d to be reused, got %d", old.Index(), reused.Index())
	}
	if reused.Generation() != old.Generation()+1 {
		t.Errorf("expected generation %d, got %d", old.Generation()+1, reused.Generation())
	}
	em.AddComponent(reused, &testPositionComponent{X: 2})

	if em.IsAlive(old) {
		t.Error("stale handle should not be alive")
	}
	if _, found := GetComponent[*testPositionComponent](em, old); found {
		t.Error("stale handle should not reach the new entity's components")
	}

	// 通过旧句柄添加组件或销毁都应被忽略
	em.AddComponent(old, &testVelocityComponent{})
	em.DestroyEntity(old)
	em.RemoveMarkedEntities()

	if !em.IsAlive(reused) {
		t.Error("destroying a stale handle must not affect the new entity")
	}
	if HasComponent[*testVelocityComponent](em, reused) {
		t.Error("stale handle must not add components to the new entity")
	}
}

func TestDestroyTwice(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	em.DestroyEntity(id)
	em.DestroyEntity(id)
	em.RemoveMarkedEntities()

	a := em.CreateEntity()
	b := em.CreateEntity()
	if a.Index() == b.Index() {
		t.Error("a slot freed twice must not be handed out twice")
	}
}

func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	// 创建不同组件组合的实体
	id1 := em.CreateEntity()
	em.AddComponent(id1, &testPositionComponent{})
	em.AddComponent(id1, &testVelocityComponent{})

	id2 := em.CreateEntity()
	em.AddComponent(id2, &testPositionComponent{})

	id3 := em.CreateEntity()
	em.AddComponent(id3, &testVelocityComponent{})

	// 查询拥有 Position+Velocity 的实体
	entities := GetEntitiesWith2[*testPositionComponent, *testVelocityComponent](em)
	if len(entities) != 1 || entities[0] != id1 {
		t.Errorf("Query should return only id1, got %v", entities)
	}

	// 查询只拥有 Position 的实体，结果按槽位顺序
	posEntities := GetEntitiesWith1[*testPositionComponent](em)
	if len(posEntities) != 2 || posEntities[0] != id1 || posEntities[1] != id2 {
		t.Errorf("expected [%d %d], got %v", id1, id2, posEntities)
	}

	// 已清理的实体不再出现在查询结果中
	em.DestroyEntity(id1)
	em.RemoveMarkedEntities()
	if got := GetEntitiesWith1[*testVelocityComponent](em); len(got) != 1 || got[0] != id3 {
		t.Errorf("expected only id3, got %v", got)
	}
}

func TestDestroyMultipleEntities(t *testing.T) {
	em := NewEntityManager()

	// 创建多个实体
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()
	id3 := em.CreateEntity()

	// 标记两个实体删除
	em.DestroyEntity(id1)
	em.DestroyEntity(id3)

	// 清理
	em.RemoveMarkedEntities()

	// 验证只有id2存在
	if em.IsAlive(id1) {
		t.Error("id1 should be removed")
	}
	if !em.IsAlive(id2) {
		t.Error("id2 should still exist")
	}
	if em.IsAlive(id3) {
		t.Error("id3 should be removed")
	}
}
