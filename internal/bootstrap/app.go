package bootstrap

import (
	"context"
	"fmt"
	"time"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"docquery/internal/ai"
	appsvc "docquery/internal/app"
	"docquery/internal/cache"
	"docquery/internal/chunker"
	"docquery/internal/config"
	"docquery/internal/extract"
	"docquery/internal/index"
	"docquery/internal/model"
	milvusPlatform "docquery/internal/platform/milvus"
	mysqlClient "docquery/internal/platform/mysql"
	rabbitmqClient "docquery/internal/platform/rabbitmq"
	redisClient "docquery/internal/platform/redis"
	"docquery/internal/repository"
	"docquery/internal/worker"
)

type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	MySQL    *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Milvus   milvusclient.Client
	Registry *extract.Registry

	IngestService    *appsvc.IngestService
	RetrievalService *appsvc.RetrievalService
	IngestWorker     *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Chunk{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	milvusCli, err := milvusPlatform.New(ctx, cfg.Milvus.Addr)
	if err != nil {
		return nil, err
	}

	// Extractor registrations happen once here; the registry is read-only
	// from this point on.
	registry := extract.NewRegistry()
	ocr := extract.NewTesseractEngine()
	registry.Register("txt", func() extract.Extractor { return extract.NewTextExtractor() })
	registry.Register("pdf", func() extract.Extractor { return extract.NewPDFExtractor(ocr, log) })

	textChunker, err := chunker.New(cfg.Ingest.SentencesPerChunk)
	if err != nil {
		return nil, fmt.Errorf("build chunker failed: %w", err)
	}

	embedder := ai.NewClient(ai.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimension:  cfg.Embedding.Dimension,
		MaxRetries: cfg.Embedding.MaxRetries,
	})

	vectorIdx, err := index.NewMilvusIndex(ctx, milvusCli, cfg.Milvus.Collection, cfg.Embedding.Dimension, log)
	if err != nil {
		return nil, err
	}

	embCache := cache.NewEmbeddingCache(
		redisCli,
		cfg.Embedding.Model,
		time.Duration(cfg.Redis.EmbeddingTTLSeconds)*time.Second,
	)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	publisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)

	ingestService := appsvc.NewIngestService(
		docRepo,
		chunkRepo,
		vectorIdx,
		embedder,
		publisher,
		extract.NewParser(registry),
		textChunker,
		log,
	)
	retrievalService := appsvc.NewRetrievalService(
		chunkRepo,
		vectorIdx,
		embedder,
		embCache,
		cfg.Ingest.DefaultQueryLimit,
		log,
	)

	ingestWorker := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue, log)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:           cfg,
		Log:              log,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		Milvus:           milvusCli,
		Registry:         registry,
		IngestService:    ingestService,
		RetrievalService: retrievalService,
		IngestWorker:     ingestWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Milvus != nil {
		if err := a.Milvus.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
