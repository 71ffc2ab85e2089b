// Package config 解析设备连接信息（主机、用户名、密码）并提供交互式输入。
// 优先级：命令行参数 → 环境变量 → ~/.rokuloader/credentials → 默认值。
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigDirName       = ".rokuloader" // 配置目录，位于用户 home 下
	CredentialsFileName = "credentials"

	DefaultUsername = "rokudev"

	EnvHost     = "ROKU_HOST"
	EnvUsername = "ROKU_USERNAME"
	EnvPassword = "ROKU_PASSWORD"
)

var (
	ErrProfileNotFound = errors.New("credentials file not found")
	ErrMissingHost     = errors.New("device hostname is not set (use --hostname or ROKU_HOST)")
)

// Profile 设备连接信息
type Profile struct {
	Host     string
	Username string
	Password string
}

// GetConfigDir 返回配置目录路径（~/.rokuloader/）
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// DefaultCredentialsPath 返回 ~/.rokuloader/credentials
func DefaultCredentialsPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CredentialsFileName), nil
}

// LoadProfileFrom 从指定路径加载 credentials 文件。
// 文件格式为 key=value（只取第一个 = 分割），# 开头为注释。
func LoadProfileFrom(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("读取凭证文件失败: %w", err)
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		kv[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取凭证文件失败: %w", err)
	}

	return &Profile{
		Host:     kv["host"],
		Username: kv["username"],
		Password: kv["password"],
	}, nil
}

// SaveProfileTo 将连接信息保存到指定路径，权限 600
func SaveProfileTo(path string, p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	content := fmt.Sprintf("host=%s\nusername=%s\npassword=%s\n", p.Host, p.Username, p.Password)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("保存凭证文件失败: %w", err)
	}
	return nil
}

// Resolve 合并命令行参数、环境变量和 credentials 文件。
// path 为空时只使用参数和环境变量；文件不存在不是错误。
// 密码允许为空，由调用方决定是否交互输入。
func Resolve(flags Profile, path string) (*Profile, error) {
	file := &Profile{}
	if path != "" {
		loaded, err := LoadProfileFrom(path)
		switch {
		case err == nil:
			file = loaded
		case errors.Is(err, ErrProfileNotFound):
		default:
			return nil, err
		}
	}

	p := &Profile{
		Host:     firstNonEmpty(flags.Host, os.Getenv(EnvHost), file.Host),
		Username: firstNonEmpty(flags.Username, os.Getenv(EnvUsername), file.Username, DefaultUsername),
		Password: firstNonEmpty(flags.Password, os.Getenv(EnvPassword), file.Password),
	}

	if p.Host == "" {
		return nil, ErrMissingHost
	}
	return p, nil
}

// NeedsPassword 用户名为 none 时设备不做认证，不需要密码
func (p *Profile) NeedsPassword() bool {
	return p.Username != "none" && p.Password == ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
