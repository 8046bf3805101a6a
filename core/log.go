package core

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PrepareLogger installs the global zap logger the whole program logs
// through. Verbose keeps the development default of debug level, otherwise
// the level is raised to info.
func PrepareLogger(verbose bool) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := config.Build()

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to produce a logger: %s\n", err.Error())
		os.Exit(1)
	}

	zap.ReplaceGlobals(logger)
}
