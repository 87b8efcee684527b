package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes SQL logging through Logger at a level derived from it.
func GormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	switch {
	case Logger.IsLevelEnabled(logrus.DebugLevel):
		level = gormlogger.Info
	case !Logger.IsLevelEnabled(logrus.WarnLevel):
		level = gormlogger.Error
	}

	return gormlogger.New(Logger, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
