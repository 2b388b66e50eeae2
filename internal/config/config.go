package config

import (
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Escrow   EscrowConfig   `mapstructure:"escrow"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres 或 sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 数据文件路径
}

// ChainConfig 链上镜像配置
// 本地账本是权威状态，链上镜像仅作外部可查的副本，可整体关闭
type ChainConfig struct {
	Enabled     bool   `mapstructure:"enabled"`      // 是否启用链上镜像
	RpcUrl      string `mapstructure:"rpc_url"`      // RPC节点URL
	PrivateKey  string `mapstructure:"private_key"`  // 铸币账户私钥
	TokenAddr   string `mapstructure:"token_addr"`   // 股权代币合约地址
	MaxAttempts int    `mapstructure:"max_attempts"` // 单条铸币记录最大重试次数
}

// EscrowConfig 托管与治理策略配置
type EscrowConfig struct {
	PlatformFeeBps       int64  `mapstructure:"platform_fee_bps"`       // 平台手续费（基点）
	PlatformAddress      string `mapstructure:"platform_address"`       // 平台收款地址
	MaxMilestones        int    `mapstructure:"max_milestones"`         // 里程碑数量上限
	MaxDurationDays      int    `mapstructure:"max_duration_days"`      // 众筹天数上限
	VotingPeriodDays     int    `mapstructure:"voting_period_days"`     // 投票窗口天数
	ProposalThresholdBps int64  `mapstructure:"proposal_threshold_bps"` // 普通提案持币门槛（基点）
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/crowdmantle")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "crowdmantle")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "crowdmantle.db")
	viper.SetDefault("chain.enabled", false)
	viper.SetDefault("chain.max_attempts", 5)
	viper.SetDefault("escrow.platform_fee_bps", 200)
	viper.SetDefault("escrow.platform_address", "0x000000000000000000000000000000000000dEaD")
	viper.SetDefault("escrow.max_milestones", 3)
	viper.SetDefault("escrow.max_duration_days", 90)
	viper.SetDefault("escrow.voting_period_days", 3)
	viper.SetDefault("escrow.proposal_threshold_bps", 100)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
