//go:build !mobile

// stub.go - 非移动端构建时的占位文件
//
// 普通构建不嵌入 mobile/data，只保留 Dummy 使包可以被引用。
package mobile

// Dummy 是一个空导出函数，确保包在非移动端构建时也能被引用
func Dummy() {}
