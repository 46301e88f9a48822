package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetScribe/config"
	"meetScribe/integrations"
	"meetScribe/notify"
	"meetScribe/processors"
	"meetScribe/scheduler"
	"meetScribe/server"
	"meetScribe/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.NewMeetingStore(ctx, cfg)
	defer store.Close(ctx)

	vector := storage.NewVectorStore(cfg)
	log.Printf("Vector store initialized")

	live := server.NewLiveHub()
	pipeline := &processors.Pipeline{
		Store:       store,
		Vector:      vector,
		Transcriber: processors.NewTranscriptionProvider(),
		Translator:  processors.NewTranslator(cfg),
		Engine:      processors.NewSummaryEngine(),
		Notifier:    notify.New(cfg),
		OnFragment:  live.Publish,
	}

	oauth := integrations.NewOAuthManager(cfg, store)

	sched := scheduler.New(cfg, store, oauth)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	watcher, err := scheduler.NewUploadWatcher(cfg.UploadsDir, func(ctx context.Context, meetingID, path string) {
		meeting, err := store.GetMeetingByID(ctx, meetingID)
		if err != nil {
			log.Printf("[Watcher] no meeting for upload %s: %v", path, err)
			return
		}
		if _, err := pipeline.ProcessRecording(ctx, meeting.ID, meeting.OwnerID, path, ""); err != nil {
			log.Printf("[Watcher] process upload for meeting %s: %v", meeting.ID, err)
		}
	})
	if err != nil {
		log.Fatalf("failed to start upload watcher: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	srv := server.New(cfg, store, vector, pipeline, oauth, live)
	mux := http.NewServeMux()
	srv.Routes(mux)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	httpSrv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
