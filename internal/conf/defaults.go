package conf

import (
	"github.com/spf13/viper"

	"github.com/tphakala/applog/internal/logger"
)

// DefaultDatabaseURL is a SQLite file next to the log directory.
const DefaultDatabaseURL = "sqlite://applog.db"

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("environment", string(logger.EnvDevelopment))

	v.SetDefault("log.dir", logger.DefaultLogDir)
	v.SetDefault("log.queuesize", logger.DefaultQueueSize)
	v.SetDefault("log.blockonfull", false)
	v.SetDefault("log.redact", false)
	v.SetDefault("log.flushinterval", logger.DefaultFlushInterval)

	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.janitorinterval", logger.DefaultJanitorInterval)

	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.textfile", "")
}
