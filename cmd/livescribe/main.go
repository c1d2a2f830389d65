// livescribe continuously transcribes microphone audio and maintains a live
// transcript on screen and on disk, in plain text or SubRip subtitle form.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmorell/livescribe/internal/audio"
	"github.com/rmorell/livescribe/internal/config"
	"github.com/rmorell/livescribe/internal/models"
	"github.com/rmorell/livescribe/internal/output"
	"github.com/rmorell/livescribe/internal/phrase"
	"github.com/rmorell/livescribe/internal/pipeline"
	"github.com/rmorell/livescribe/internal/transcribe"
	"github.com/rmorell/livescribe/internal/transcript"
)

const calibrationDuration = time.Second

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/livescribe/config.yaml)")
	model := flag.String("model", "base", "model size (tiny, base, small, medium, large-v3, large-v3-turbo, ...)")
	inputDevice := flag.String("input-device", "", "index or partial name of input device ('list' to show all)")
	energyThreshold := flag.Int("energy-threshold", 1000, "starting RMS energy gate for speech detection")
	recordTimeout := flag.Float64("record-timeout", 4, "seconds of audio per capture chunk")
	phraseTimeout := flag.Float64("phrase-timeout", 6, "silence gap in seconds that starts a new phrase")
	saveName := flag.String("save-name", "transcription", "base output filename without extension")
	saveFormat := flag.String("save-format", "plain", "output format: plain or subtitle")
	gpu := flag.Bool("gpu", false, "request GPU acceleration from the whisper backend")
	flag.Parse()

	// Load configuration, then let explicitly set flags win.
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *model
		case "input-device":
			cfg.InputDevice = *inputDevice
		case "energy-threshold":
			cfg.EnergyThreshold = *energyThreshold
		case "record-timeout":
			cfg.RecordTimeout = *recordTimeout
		case "phrase-timeout":
			cfg.PhraseTimeout = *phraseTimeout
		case "save-name":
			cfg.SaveName = *saveName
		case "save-format":
			cfg.SaveFormat = *saveFormat
		case "gpu":
			cfg.GPU = *gpu
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	if cfg.InputDevice == "list" {
		if err := listDevices(); err != nil {
			log.Fatalf("listing devices: %v", err)
		}
		return
	}

	// Resolve the capture device before anything expensive happens; a bad
	// selector is fatal at startup.
	deviceIndex := -1
	if cfg.InputDevice != "" {
		devices, err := audio.ListDevices()
		if err != nil {
			log.Fatalf("enumerating input devices: %v", err)
		}
		deviceIndex, err = audio.MatchDevice(devices, cfg.InputDevice)
		if err != nil {
			log.Fatalf("selecting input device: %v", err)
		}
		log.Printf("Using input device [%d] %s", deviceIndex, devices[deviceIndex].Name)
	}

	modelFile := cfg.ModelPath
	if modelFile == "" {
		modelFile, err = models.Ensure(cfg.Model)
		if err != nil {
			log.Fatalf("model: %v", err)
		}
	}

	printBanner(cfg, modelFile)

	log.Println("Loading whisper model...")
	modelStart := time.Now()
	transcriber, err := transcribe.New(transcribe.Options{ModelPath: modelFile, UseGPU: cfg.GPU})
	if err != nil {
		log.Fatalf("Failed to load whisper model: %v", err)
	}
	defer transcriber.Close()
	log.Printf("Model loaded in %s", time.Since(modelStart).Round(time.Millisecond))

	capture, err := audio.NewCapture(deviceIndex, audio.SampleRate)
	if err != nil {
		log.Fatalf("Failed to initialize audio capture: %v\n\nEnsure microphone access is granted.", err)
	}
	defer capture.Close()

	capture.SetThreshold(cfg.EnergyThreshold)
	log.Println("Calibrating for ambient noise...")
	if err := capture.Calibrate(calibrationDuration); err != nil {
		log.Fatalf("Failed to calibrate: %v", err)
	}
	log.Printf("Energy threshold: %d", capture.Threshold())

	queue := audio.NewQueue(256)
	recordWindow := time.Duration(cfg.RecordTimeout * float64(time.Second))
	if err := capture.Start(recordWindow, queue.Push); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}
	log.Println("Listening. Ctrl+C to stop.")

	writer := output.NewWriter(".", cfg.SaveName, output.Format(cfg.SaveFormat), time.Now())
	segmenter := phrase.NewSegmenter(time.Duration(cfg.PhraseTimeout * float64(time.Second)))
	p := pipeline.New(queue, segmenter, transcriber, transcript.New(), writer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	fmt.Println("\n\nTranscription:")
	for _, line := range p.Transcript().Lines() {
		fmt.Println(line)
	}
	log.Printf("Saved to %s", writer.Path())
	if dropped := queue.Dropped(); dropped > 0 {
		log.Printf("%d audio chunks dropped (queue full)", dropped)
	}
}

// loadConfig loads the config from the specified path, or falls back to the
// default config path, or uses built-in defaults plus env overrides.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	return config.Load("")
}

// listDevices prints the available capture devices, one per line.
func listDevices() error {
	devices, err := audio.ListDevices()
	if err != nil {
		return err
	}
	fmt.Println("Available audio input devices:")
	for _, d := range devices {
		fmt.Printf("[%d] %s\n", d.Index, d.Name)
	}
	return nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config, modelFile string) {
	fmt.Println("=== livescribe ===")
	fmt.Printf("  Model:    %s\n", modelFile)
	fmt.Printf("  Format:   %s (base name: %s)\n", cfg.SaveFormat, cfg.SaveName)
	fmt.Printf("  Record:   %.1fs chunks, %.1fs phrase gap\n", cfg.RecordTimeout, cfg.PhraseTimeout)
	fmt.Printf("  Audio:    %dHz mono\n", audio.SampleRate)
	fmt.Println("==================")
}
