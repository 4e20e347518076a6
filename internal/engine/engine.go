package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/NisargGB/Flipbook-Compiler/internal/config"
	"github.com/NisargGB/Flipbook-Compiler/internal/script"
	"github.com/NisargGB/Flipbook-Compiler/internal/source"
	"github.com/NisargGB/Flipbook-Compiler/internal/system"
	"github.com/NisargGB/Flipbook-Compiler/internal/timeline"
	"github.com/NisargGB/Flipbook-Compiler/internal/video"
)

// Logger receives debug traces of every executed instruction.
var Logger = logxi.New("engine")

type Project struct {
	Config     *config.Config
	Source     source.Source
	Encoder    video.VideoEncoder
	OutputPath string
}

func NewProject(cfg *config.Config, src source.Source, ve video.VideoEncoder, outputPath string) *Project {
	return &Project{
		Config:     cfg,
		Source:     src,
		Encoder:    ve,
		OutputPath: outputPath,
	}
}

// Run compiles the configured script (or YAML plan) and encodes the result.
// Compilation failures are returned as *script.Error.
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()

	in := &Interpreter{Source: p.Source}
	if p.Config.MemoryGuard {
		in.Guard = func(size timeline.Size, current, target int) error {
			return system.CheckFrameBudget(size.FrameBytes(), current, target)
		}
	}

	st, err := p.compile(ctx, in)
	if err != nil {
		return err
	}
	compileEnd := time.Now()

	if p.Config.PlanOutput != "" {
		if err := script.WritePlan(script.NewPlan(p.Config.ScriptPath, st.Executed), p.Config.PlanOutput); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
		fmt.Printf("[*] Plan written: %s\n", p.Config.PlanOutput)
	}

	frames := st.Frames()
	if len(frames) == 0 {
		fmt.Println("[*] No frames rendered, skipping video output")
		return nil
	}

	fmt.Println("--- [FLIPBOOK] ---")
	fmt.Printf("[*] Script: %s | Instructions: %d | Frames: %d\n", p.Config.ScriptPath, len(st.Executed), len(frames))
	fmt.Printf("[*] Frame size: %s @ %d FPS\n", st.Size, p.Config.FPS)
	fmt.Println("------------------")

	if dir := filepath.Dir(p.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	encodeStart := time.Now()
	if err := p.Encoder.Encode(ctx, frames, p.OutputPath); err != nil {
		return fmt.Errorf("encode video: %w", err)
	}

	if p.Config.ShowStats {
		p.report(st, startTime, compileEnd, encodeStart)
	}
	return nil
}

func (p *Project) compile(ctx context.Context, in *Interpreter) (*State, error) {
	path := p.Config.ScriptPath
	if script.IsPlanPath(path) {
		plan, err := script.ReadPlan(path)
		if err != nil {
			return nil, fmt.Errorf("read plan: %w", err)
		}
		fmt.Printf("[*] Replaying plan: %s\n", path)
		return CompilePlan(ctx, plan, in)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Compile(ctx, f, in)
}

func (p *Project) report(st *State, start, compileEnd, encodeStart time.Time) {
	total := time.Since(start)
	frames := len(st.Frames())
	rss := "n/a"
	if n, err := system.ProcessMemory(); err == nil {
		rss = system.FormatBytes(n)
	}

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Compile: %.2fs\n"+
			"Encode: %.2fs\n"+
			"Placements: %d\n"+
			"Frames: %d (%s of frame data)\n"+
			"Process memory: %s\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion,
		total.Seconds(),
		compileEnd.Sub(start).Seconds(),
		time.Since(encodeStart).Seconds(),
		st.Placements,
		frames, system.FormatBytes(st.Size.FrameBytes()*uint64(frames)),
		rss,
		float64(frames)/total.Seconds(),
	)
}
