package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. Production environments
// get the JSON encoder; everything else gets the colorized console
// encoder for readable local output.
func NewLogger(env string) *zap.Logger {
	var c zap.Config
	if env == "prod" || env == "production" {
		c = zap.NewProductionConfig()
	} else {
		c = zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	c.OutputPaths = []string{"stdout"}

	logger, err := c.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
