package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"souk/services/ingestion/internal/config"
	"souk/services/ingestion/internal/feeder"
	"souk/services/ingestion/internal/messaging"
	"souk/services/ingestion/internal/source"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "-", "JSON-lines file of job postings, - for stdin")
	wait := flag.Bool("wait", false, "wait for each estimate and print it")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	var in io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Fatal("failed to open postings", zap.String("file", *file), zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	postings, err := source.ReadPostings(in)
	if err != nil {
		logger.Fatal("failed to read postings", zap.Error(err))
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("souk-ingestion"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	publisher := messaging.NewPublisher(logger, nc)
	defer publisher.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("feeding job postings",
		zap.Int("count", len(postings)),
		zap.Int("workers", cfg.FeedWorkers),
		zap.Bool("wait", *wait))

	var timeout time.Duration
	if *wait {
		timeout = cfg.RequestTimeout
	}
	f := feeder.New(publisher, logger, cfg.FeedWorkers, timeout)
	stats := f.Run(ctx, postings, func(r feeder.Result) {
		if r.Err == nil && r.Reply != nil {
			fmt.Println(string(r.Reply))
		}
	})

	if err := nc.FlushTimeout(cfg.RequestTimeout); err != nil {
		logger.Warn("failed to flush NATS connection", zap.Error(err))
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
