package main

import (
	"testing"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/NisargGB/Flipbook-Compiler/internal/engine"
)

func TestSetupLoggingVerbose(t *testing.T) {
	prev := engine.Logger
	engine.Logger = logxi.New("engine")
	t.Cleanup(func() { engine.Logger = prev })

	logger := setupLogging(true)
	if !logger.IsDebug() {
		t.Error("expected CLI logger at debug level")
	}
	if !engine.Logger.IsDebug() {
		t.Error("expected engine logger at debug level")
	}
}
