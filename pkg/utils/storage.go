package utils

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
)

// OpenStorage 打开应用的 gdata 存储
//
// 失败时返回 nil 和错误，调用方应降级为仅内存运行。
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := EnsureStorageDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if path := StoragePath(); path != "" {
		log.Printf("[Storage] Using %s", path)
	}
	return m, nil
}
