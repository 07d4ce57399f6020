package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// ModeLocal 单机演示模式：强制使用 SQLite，并以固定身份跳过 JWT 校验。
	ModeLocal = "local"
	// ModeOnline 默认模式，所有受保护接口都需要携带 Bearer Token。
	ModeOnline = "online"

	defaultLocalUserID = 1
)

// RuntimeFlags 汇总运行模式与本地模式参数。
type RuntimeFlags struct {
	Mode  string
	Local LocalRuntime
}

// LocalRuntime 描述本地模式下注入到请求上下文的固定身份。
type LocalRuntime struct {
	UserID  uint
	IsAdmin bool
}

// IsLocal 判断当前是否运行在本地模式。
func (f RuntimeFlags) IsLocal() bool {
	return f.Mode == ModeLocal
}

// LoadRuntimeFlags 从 APP_MODE / LOCAL_USER_* 读取运行模式。
func LoadRuntimeFlags() RuntimeFlags {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE")))
	if mode != ModeLocal {
		mode = ModeOnline
	}

	local := LocalRuntime{UserID: defaultLocalUserID, IsAdmin: true}
	if rawID := strings.TrimSpace(os.Getenv("LOCAL_USER_ID")); rawID != "" {
		if parsed, err := strconv.ParseUint(rawID, 10, 32); err == nil && parsed > 0 {
			local.UserID = uint(parsed)
		}
	}
	if rawAdmin := strings.TrimSpace(os.Getenv("LOCAL_USER_ADMIN")); rawAdmin != "" {
		if parsed, err := strconv.ParseBool(rawAdmin); err == nil {
			local.IsAdmin = parsed
		}
	}

	return RuntimeFlags{Mode: mode, Local: local}
}

// normalisePath 展开 ~ 并转换为绝对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
