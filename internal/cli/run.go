package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipworks/internal/cache"
	"clipworks/internal/config"
	"clipworks/internal/domain/transcript"
	"clipworks/internal/messaging"
	"clipworks/internal/poller"
	"clipworks/internal/ports/adapters/blobfs"
	"clipworks/internal/ports/adapters/drive"
	"clipworks/internal/ports/adapters/openai"
	"clipworks/internal/ports/adapters/postgres"
	"clipworks/internal/ports/adapters/speech"
	"clipworks/internal/refine"
	"clipworks/internal/selector"
	"clipworks/internal/server"
	"clipworks/internal/usecase"
)

func runServe(cmd *cobra.Command) error {
	cfg := config.FromEnv()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	blobs, err := blobfs.New(cfg.BlobDir, cfg.BlobBaseURL, []byte(cfg.BlobSecret))
	if err != nil {
		return err
	}

	dict := transcript.EmptyDictionary()
	if cfg.DictionaryPath != "" {
		dict, err = transcript.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
	}

	chunker, err := transcript.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	ai := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	origin := drive.New(cfg.DriveBaseURL, cfg.DriveToken)
	jobs := postgres.NewProcessingJobRepository(pool)

	uc := usecase.New(usecase.Deps{
		Videos:         postgres.NewVideoRepository(pool),
		Jobs:           jobs,
		Clips:          postgres.NewClipRepository(pool),
		Transcriptions: postgres.NewTranscriptionRepository(pool),
		Refined:        postgres.NewRefinedTranscriptionRepository(pool),
		Subtitles:      postgres.NewClipSubtitleRepository(pool),

		Origin:      origin,
		Transcriber: speech.New(cfg.SpeechBaseURL, cfg.SpeechToken),

		Refiner:  refine.New(ai, chunker, dict, log.Printf),
		Selector: selector.New(ai),
		Media:    cache.New(origin, blobs, cfg.StorageTTL, cfg.URLTTL, log.Printf),

		Logf: log.Printf,
	})

	p := poller.New(jobs, uc.ProcessJob, cfg.PollInterval, log.Printf)
	p.Start(ctx)
	defer p.Stop()

	if cfg.NATSURL != "" {
		consumer, err := messaging.NewConsumer(cfg.NATSURL, cfg.NATSSubject, uc.ProcessJob, log.Printf)
		if err != nil {
			return err
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("nats consumer stopped: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(uc, blobs, log.Printf).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
