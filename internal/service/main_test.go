package service

import (
	"os"
	"testing"

	"vidquiz/internal/config"
	"vidquiz/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "debug", Env: "test"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
