// Package config loads pool settings from a YAML file and TASKPOOL_*
// environment variables.
package config

import (
	"fmt"
	"runtime"
	"strings"

	taskpool "github.com/Swind/go-task-pool"
	"github.com/Swind/go-task-pool/core"
	"github.com/spf13/viper"
)

const envPrefix = "TASKPOOL"

// Settings is the file/env representation of a pool and its logger.
type Settings struct {
	Pool PoolSettings   `mapstructure:"pool"`
	Log  core.LogConfig `mapstructure:"log"`
}

type PoolSettings struct {
	Name string `mapstructure:"name"`
	Size int    `mapstructure:"size"`
}

// Load reads settings from path, if non-empty, then applies environment
// overrides such as TASKPOOL_POOL_SIZE or TASKPOOL_LOG_LEVEL.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	logDefaults := core.DefaultLogConfig()

	v.SetDefault("pool.name", "default")
	v.SetDefault("pool.size", runtime.NumCPU())
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.file", logDefaults.File)
	v.SetDefault("log.max_size", logDefaults.MaxSize)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age", logDefaults.MaxAge)
	v.SetDefault("log.compress", logDefaults.Compress)
}

// Validate rejects settings that a pool would refuse at construction.
func (s *Settings) Validate() error {
	if s.Pool.Size <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidPoolSize, s.Pool.Size)
	}
	return nil
}

// PoolConfig converts the settings into a pool config using logger and
// metrics. Either may be nil to use the pool defaults.
func (s *Settings) PoolConfig(logger core.Logger, metrics core.Metrics) taskpool.Config {
	return taskpool.Config{
		Name:    s.Pool.Name,
		Size:    s.Pool.Size,
		Logger:  logger,
		Metrics: metrics,
	}
}

// NewPool builds the logger described by the settings and starts a pool
// with it. The caller owns both and should Sync the logger after closing
// the pool.
func (s *Settings) NewPool(metrics core.Metrics) (*taskpool.WorkerPool, *core.ZapLogger, error) {
	logger, err := core.NewLogger(s.Log)
	if err != nil {
		return nil, nil, err
	}
	pool, err := taskpool.NewWorkerPoolWithConfig(s.PoolConfig(logger, metrics))
	if err != nil {
		return nil, nil, err
	}
	return pool, logger, nil
}
