package logging

import (
	"os"

	"go.uber.org/zap"
)

// GetSugaredLogger returns the application-wide sugared logger.
// Production builds use the JSON production config, everything else
// gets the human-readable development config.
func GetSugaredLogger() *zap.SugaredLogger {
	var logger *zap.Logger
	var err error

	if isProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("cannot initialize zap")
	}

	return logger.Sugar()
}

func isProduction() bool {
	return os.Getenv("GO_ENV") == "production"
}
