package cli

import "github.com/glorpus-work/addonctl/internal/logger"

// cronLogger routes scheduler messages to the application logger. cron is
// chatty at info level, so its info records are demoted to debug.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Error(msg, append(keysAndValues, "error", err)...)
}
