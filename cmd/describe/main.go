// Command describe runs one capture cycle over an image file or a directory
// of frames and prints the description. With -audio it also writes the
// narration to a file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/adapters/camera"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/internal/app"
	"github.com/satriahrh/snapspeak/internal/capture"
	"github.com/satriahrh/snapspeak/internal/config"
	"github.com/satriahrh/snapspeak/internal/logger"
	"github.com/satriahrh/snapspeak/usecase"
)

func main() {
	imagePath := flag.String("image", "", "image file, or directory whose newest image is used")
	audioPath := flag.String("audio", "", "write the narration audio to this file")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	raw := flag.Bool("raw", false, "also print the raw model response")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: describe -image <path> [-audio out.pcm] [-json] [-raw]")
		os.Exit(2)
	}

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateVision(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *audioPath != "" {
		if err := cfg.ValidateSpeech(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	// Keep stdout for the result
	log, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := describe(ctx, cfg, *imagePath, log)
	if err != nil {
		log.Fatal("Describe failed", zap.Error(err))
	}

	text := entities.NoDescriptionText
	if result.Found {
		text = result.Text
	}

	if *asJSON {
		out := map[string]any{
			"description": text,
			"found":       result.Found,
			"confidence":  result.Confidence,
			"model":       result.Model,
			"elapsed_ms":  result.Elapsed.Milliseconds(),
		}
		if *raw && json.Valid(result.Raw) {
			out["raw"] = json.RawMessage(result.Raw)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatal("Failed to write result", zap.Error(err))
		}
	} else {
		fmt.Println(text)
		if result.Found {
			fmt.Printf("confidence: %.0f%%\n", result.Confidence)
		}
		if *raw {
			fmt.Println(string(result.Raw))
		}
	}

	if *audioPath != "" && result.Found {
		if err := narrate(ctx, cfg, result.Text, *audioPath, log); err != nil {
			log.Fatal("Narration failed", zap.Error(err))
		}
		log.Info("Narration written", zap.String("path", *audioPath))
	}
}

func describe(ctx context.Context, cfg *config.Config, path string, log *zap.Logger) (*usecase.Description, error) {
	model, err := app.NewVisionModel(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	describer, err := usecase.NewDescriber(model, usecase.DescriberConfig{
		Prompt:  cfg.AnalysisPrompt,
		Capture: cfg.Capture(),
		Timeout: cfg.AnalysisTimeout,
	}, nil, log)
	if err != nil {
		return nil, err
	}

	source, err := camera.NewFileCamera(path, cfg.MaxFrameBytes, log).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	img, err := capture.Capture(source, describer.CaptureOptions())
	if err != nil {
		return nil, err
	}

	return describer.Describe(ctx, img)
}

func narrate(ctx context.Context, cfg *config.Config, text, path string, log *zap.Logger) error {
	speech, err := app.NewTextToSpeech(cfg, log)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	sink := &fileSink{file: out}

	narrator := usecase.NewNarrator(speech, sink, nil, log)
	narrator.Speak(ctx, text)
	narrator.Wait()

	if err := out.Close(); err != nil {
		return err
	}
	if !sink.completed {
		return fmt.Errorf("narration did not complete")
	}
	return sink.err
}
