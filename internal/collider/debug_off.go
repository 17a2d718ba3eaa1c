//go:build !colliderdebug

package collider

// debugChecks 关闭时 ExtractBlock 不做边界检查
const debugChecks = false
