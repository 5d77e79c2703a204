package logger

import (
	"log"

	"go.uber.org/zap"
)

var L = zap.NewNop().Sugar()

// Init builds the process-wide logger. Call once from main before
// any package logs.
func Init(env string) {
	var (
		base *zap.Logger
		err  error
	)
	if env == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	L = base.Sugar()
}

func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}
