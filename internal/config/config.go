package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 环境变量
const (
	EnvPort      = "SALESPULSE_PORT"
	EnvDataDir   = "SALESPULSE_DATA_DIR"
	EnvRulesPath = "SALESPULSE_RULES_PATH"
	EnvLogLevel  = "SALESPULSE_LOG_LEVEL"
	EnvTimezone  = "SALESPULSE_TIMEZONE"
)

// ConfigFileName 配置文件名
const ConfigFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Business BusinessConfig `toml:"business"`
	Import   ImportConfig   `toml:"import"`
	Rules    RulesConfig    `toml:"rules"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	InstallmentMarker string  `toml:"installment_marker"`
	ExportedStatus    string  `toml:"exported_status"`
	TargetShare       float64 `toml:"target_share"`
	Timezone          string  `toml:"timezone"`
	WeekStart         string  `toml:"week_start"`
}

// ImportConfig 导入配置
type ImportConfig struct {
	SheetName   string `toml:"sheet_name"` // 为空时自动识别
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// RulesConfig 系数规则表配置
type RulesConfig struct {
	Path string `toml:"path"` // 为空时使用内置规则表
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Business: BusinessConfig{
			InstallmentMarker: "trả góp",
			ExportedStatus:    "Đã xuất",
			TargetShare:       0.1,
			Timezone:          "Asia/Ho_Chi_Minh",
			WeekStart:         "monday",
		},
		Import: ImportConfig{
			MaxUploadMB: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Location 业务时区
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// WeekStartDay 每周起始日
func (c *AppConfig) WeekStartDay() time.Weekday {
	if strings.EqualFold(strings.TrimSpace(c.Business.WeekStart), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Business.TargetShare <= 0 || c.Business.TargetShare > 1 {
		errs = append(errs, fmt.Errorf("business.target_share must be in (0, 1]: %v", c.Business.TargetShare))
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("business.timezone: %w", err))
	}
	switch strings.ToLower(strings.TrimSpace(c.Business.WeekStart)) {
	case "monday", "sunday":
	default:
		errs = append(errs, fmt.Errorf("business.week_start must be monday or sunday: %q", c.Business.WeekStart))
	}
	if c.Import.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("import.max_upload_mb must be positive: %d", c.Import.MaxUploadMB))
	}
	return errors.Join(errs...)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 默认配置文件路径（可执行文件同目录）
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, ConfigFileName)
}

// LoadConfigWithInfo 加载配置并返回元信息；path 为空时使用默认路径
//
// 加载顺序：默认值 → config.toml → .env → 环境变量。
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env 不覆盖已存在的环境变量
	_ = godotenv.Load()

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv(EnvRulesPath); v != "" {
		config.Rules.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		config.Business.Timezone = v
	}
	return nil
}

// SaveConfig 保存配置
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录绝对路径；相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
