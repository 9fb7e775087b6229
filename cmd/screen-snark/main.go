package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/sjawhar/screen-snark/internal/audio"
	"github.com/sjawhar/screen-snark/internal/capture"
	"github.com/sjawhar/screen-snark/internal/config"
	"github.com/sjawhar/screen-snark/internal/gdrive"
	"github.com/sjawhar/screen-snark/internal/llm"
	"github.com/sjawhar/screen-snark/internal/notify"
	"github.com/sjawhar/screen-snark/internal/server"
	"github.com/sjawhar/screen-snark/internal/session"
	"github.com/sjawhar/screen-snark/internal/speech"
	"github.com/sjawhar/screen-snark/internal/storage"
	"github.com/sjawhar/screen-snark/internal/summary"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, warnings, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	factory := func(provider, model string) (llm.Client, error) {
		return llm.NewClient(provider, cfg.APIKeyFor(provider), model)
	}
	provider, model, err := llm.ParseModel(cfg.Summarization.Model)
	if err != nil {
		log.Fatalf("summarization model: %v", err)
	}
	if _, err := factory(provider, model); err != nil {
		log.Fatalf("create llm client: %v", err)
	}

	beeep.AppName = cfg.NotificationTitle
	logWriter := storage.NewLogWriter(cfg.ExpandedLogPath())

	sinks := []session.Sink{notify.NewNotifier(cfg.NotificationTitle)}
	if speaker := newSpeaker(cfg); speaker != nil {
		sinks = append(sinks, speaker)
	}
	sinks = append(sinks, logWriter)

	hub := server.NewHub()
	observers := []session.Observer{hub}

	var history server.DispatchStore
	var store *storage.SQLiteStore
	if cfg.DBPath != "" {
		store, err = storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			slog.Warn("dispatch history disabled", "error", err)
			warnings = append(warnings, "Dispatch history disabled: "+err.Error())
		} else {
			history = store
			observers = append(observers, store)
		}
	}

	loop := session.NewLoop(session.Deps{
		Source:     capture.NewScreen(cfg.Display),
		Summarizer: summary.New(cfg.Summarization, factory),
		Sinks:      sinks,
		Observers:  observers,
	}, session.Options{
		SampleInterval:   cfg.ParsedSampleInterval(),
		DispatchInterval: cfg.ParsedDispatchInterval(),
		SummarizeTimeout: cfg.ParsedSummarizeTimeout(),
		DeliverTimeout:   cfg.ParsedDeliverTimeout(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = server.New(cfg.HTTPAddr, hub, history, server.StatusHooks{
			Status:   loop.Status,
			Warnings: func() []string { return warnings },
		})
		go func() {
			log.Printf("http server listening on %s", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server failed", "error", err)
			}
		}()
	}

	if cfg.GDriveFolderID != "" {
		syncer, err := gdrive.NewSyncer(ctx, cfg.GoogleCredentials, cfg.GDriveFolderID, logWriter.Path())
		if err != nil {
			slog.Warn("google drive sync disabled", "error", err)
		} else {
			go syncer.Run(ctx, cfg.ParsedGDriveSyncInterval())
		}
	}

	log.Printf("screen-snark started: sampling every %s, commentary every %s (%s)",
		cfg.ParsedSampleInterval(), cfg.ParsedDispatchInterval(), cfg.Summarization.Model)

	if delay := cfg.ParsedStartupDelay(); delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}

	if ctx.Err() == nil {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("capture loop stopped", "error", err)
		}
	}

	log.Println("shutting down")
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "error", err)
		}
		cancel()
	}
	if store != nil {
		if err := store.Close(); err != nil {
			slog.Warn("close dispatch store", "error", err)
		}
	}
}

// newSpeaker returns nil when speech is disabled.
func newSpeaker(cfg config.Config) *speech.Speaker {
	var synth speech.Synthesizer
	switch cfg.Speech.Provider {
	case config.SpeechHTTP:
		synth = speech.NewHTTPSynthesizer(cfg.Speech.URL, cfg.Speech.Voice)
	case config.SpeechDeepgram:
		synth = speech.NewDeepgramSynthesizer(cfg.DeepgramAPIKey, cfg.Speech.DeepgramModel)
	default:
		return nil
	}
	return speech.NewSpeaker(synth, audio.NewPlayer())
}
