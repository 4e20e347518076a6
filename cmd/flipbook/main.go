package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	logxi "github.com/mgutz/logxi/v1"
	"golang.org/x/term"

	"github.com/NisargGB/Flipbook-Compiler/internal/config"
	"github.com/NisargGB/Flipbook-Compiler/internal/engine"
	"github.com/NisargGB/Flipbook-Compiler/internal/script"
	"github.com/NisargGB/Flipbook-Compiler/internal/source"
	"github.com/NisargGB/Flipbook-Compiler/internal/system"
	"github.com/NisargGB/Flipbook-Compiler/internal/video"
)

var version = "dev"

func main() {
	configPtr := flag.String("config", "", "YAML config file (flags override its values)")
	resourcePtr := flag.String("resource-dir", "", "Directory that relative image paths are resolved against (default: script directory)")
	outputPtr := flag.String("output", "", "Output video path (default: generated in output/)")
	fpsPtr := flag.Int("fps", config.DefaultFPS, "Frames per second")
	encoderPtr := flag.String("encoder", config.EncoderAuto, "Encoder: auto, ffmpeg, mjpeg")
	qualityPtr := flag.Int("quality", config.DefaultQuality, "Video quality (x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	planPtr := flag.String("plan", "", "Write the compiled instruction plan to this YAML file")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	verbosePtr := flag.Bool("v", false, "Log every executed instruction")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	// explicitly set flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "resource-dir":
			cfg.ResourceDir = *resourcePtr
		case "output":
			cfg.OutputVideo = *outputPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "encoder":
			cfg.Encoder = *encoderPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "plan":
			cfg.PlanOutput = *planPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "v":
			cfg.Verbose = *verbosePtr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	cfg.BuildVersion = version

	logger := setupLogging(cfg.Verbose)

	cfg.ScriptPath = flag.Arg(0)
	if cfg.ScriptPath == "" {
		latest, err := system.FindLatestScript("scripts")
		if err != nil {
			log.Fatalf("[-] Error: %v. Pass a script path or put one in scripts/", err)
		}
		cfg.ScriptPath = latest
		fmt.Printf("[*] Selected script: %s\n", cfg.ScriptPath)
	}
	if !isFlagSet("resource-dir") && *configPtr == "" {
		cfg.ResourceDir = filepath.Dir(cfg.ScriptPath)
	}

	if cfg.OutputVideo == "" {
		baseName := filepath.Base(cfg.ScriptPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		nameOnly = strings.TrimSuffix(nameOnly, ".plan")
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ve, outputPath := video.NewEncoder(ctx, cfg)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		progress := func(done, total int) {
			if done == total || done%cfg.FPS == 0 {
				fmt.Printf("\r[>] Encoding frame %d/%d", done, total)
			}
			if done == total {
				fmt.Println()
			}
		}
		switch e := ve.(type) {
		case *video.FFmpegEncoder:
			e.Progress = progress
		case *video.MJPEGEncoder:
			e.Progress = progress
		}
	}
	logger.Debug("encoder selected", "type", fmt.Sprintf("%T", ve), "output", outputPath)

	src := source.NewMultiSource(cfg.ResourceDir, cfg.DPI, cfg.QRSize)
	project := engine.NewProject(cfg, src, ve, outputPath)

	if err := project.Run(ctx); err != nil {
		var se *script.Error
		if errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, "Compilation Failed")
			fmt.Fprintf(os.Stderr, "Error %v\n", se)
			os.Exit(1)
		}
		log.Fatalf("[-] Project error: %v", err)
	}

	if _, err := os.Stat(outputPath); err == nil {
		fmt.Printf("[+++] Success! Result: %s\n", outputPath)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// setupLogging returns the CLI logger, raising it and the engine's logger to
// debug when verbose is set.
func setupLogging(verbose bool) logxi.Logger {
	logger := logxi.New("flipbook")
	if verbose {
		logger.SetLevel(logxi.LevelDebug)
		engine.Logger.SetLevel(logxi.LevelDebug)
	}
	return logger
}
