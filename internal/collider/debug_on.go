//go:build colliderdebug

package collider

// debugChecks 打开时 ExtractBlock 对越界参数 panic
const debugChecks = true
