/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 10:12:40
 * @FilePath: \employee-portal\backend\internal\config\env_loader.go
 * @LastEditTime: 2026-03-02 10:12:44
 */
package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const envFileOverride = "PORTAL_ENV_FILE"

var (
	envOnce     sync.Once
	envOnceLock sync.Mutex
	skipEnvLoad bool
)

// LoadEnvFiles 只加载一次环境文件。
// 若设置了 PORTAL_ENV_FILE 则只加载该文件；否则从当前目录逐级向上寻找 .env.local 与 .env，
// .env.local 优先级更高（后加载的 .env 不会覆盖已有变量）。
func LoadEnvFiles() {
	envOnceLock.Lock()
	skip := skipEnvLoad
	envOnceLock.Unlock()
	if skip || os.Getenv("CONFIG_SKIP_ENV_LOAD") == "1" {
		return
	}

	envOnce.Do(func() {
		if explicit := strings.TrimSpace(os.Getenv(envFileOverride)); explicit != "" {
			if err := godotenv.Overload(explicit); err != nil {
				log.Printf("[config] load %s failed: %v", explicit, err)
				return
			}
			log.Printf("[config] loaded environment file: %s", explicit)
			return
		}

		loaded := make([]string, 0, 2)
		for _, name := range []string{".env.local", ".env"} {
			if path, ok := findEnvFile(name); ok {
				loaded = append(loaded, path)
			}
		}
		if len(loaded) == 0 {
			return
		}
		// godotenv.Load 不覆盖已存在的变量，因此先加载的 .env.local 生效。
		if err := godotenv.Load(loaded...); err != nil {
			log.Printf("[config] load env files failed: %v", err)
			return
		}
		log.Printf("[config] loaded environment files: %s", strings.Join(loaded, ", "))
	})
}

// SetEnvFileLoadingForTest 控制是否自动加载 env 文件，仅供测试使用。
func SetEnvFileLoadingForTest(enabled bool) {
	envOnceLock.Lock()
	defer envOnceLock.Unlock()

	skipEnvLoad = !enabled
	envOnce = sync.Once{}
}

func findEnvFile(name string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
