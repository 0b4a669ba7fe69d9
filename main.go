package main

import (
	"context"
	"time"

	"lampring/internal/boards"
	"lampring/internal/config"
	"lampring/internal/logx"
	"lampring/internal/platform"
	"lampring/internal/program"
)

func main() {
	// Allow the console to come up before we print.
	time.Sleep(2 * time.Second)

	cfg := config.Default()
	plat, out, err := platform.Open(boards.Selected)
	if err != nil {
		halt("platform", err)
	}
	logx.SetOutput(out)
	logx.SetLogLevel(cfg.LogLevel)
	logx.LogInfo(logx.ComponentProgram, "boot",
		"board", boards.Selected.Name,
		"backend", platform.Name,
		"drivers", logx.DriversVersion())

	p, err := program.Initialize(plat, boards.Selected, cfg, nil, nil)
	if err != nil {
		halt("initialize", err)
	}
	if err := p.Run(context.Background()); err != nil {
		halt("run", err)
	}
	logx.LogInfo(logx.ComponentProgram, "done", "ticks", p.Ticks())
	halt("", nil)
}

// halt parks the core. Nothing advances until reset.
func halt(stage string, err error) {
	if err != nil {
		logx.LogError(logx.ComponentProgram, "halted", "stage", stage, "error", err)
	}
	for {
		time.Sleep(time.Hour)
	}
}
