// Package logger provides component-scoped structured logging for ytapi on
// top of logrus.
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentStaging)
//	log.Warn("cleanup failed", map[string]interface{}{
//		"dir": dir,
//		"err": err,
//	})
//
//	cfg := logger.DefaultConfig()
//	cfg.Level = logger.DEBUG
//	cfg.Format = logger.FormatJSON
//	logger.SetGlobalLogger(logger.New(cfg))
//
// Components that are disabled in the configuration only emit ERROR entries.
package logger
