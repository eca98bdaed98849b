package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/XevilA/spu-nexus-sub000/internal/advisor"
	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/cache"
	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/llm"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
	"github.com/XevilA/spu-nexus-sub000/internal/usagelog"
)

// MyServer holds every long lived collaborator of the API process.
type MyServer struct {
	Config *config.Config
	Log    logrus.FieldLogger
	DB     *database.DBinstanceStruct

	Redis   *redis.Client
	Mongo   *mongo.Client
	Storage *storage.CloudStorageClient

	Issuer    *auth.JwtIssuer
	Blacklist auth.JwtBlacklistStore
	Broker    notify.Broker
	Services  *service.Services
	Advisor   *advisor.Bridge

	closers []func() error
}

// Backends are the optional stores the API can run without.
type Backends struct {
	Redis   *redis.Client
	Mongo   *mongo.Client
	Storage *storage.CloudStorageClient
	LLM     llm.Provider
}

// NewServer connects the database and every configured backend and returns the HTTP
// server with its owning MyServer. Call Close on the latter after shutdown.
func NewServer(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*http.Server, *MyServer, error) {
	if cfg.SecretKey == "" {
		return nil, nil, errors.New("SECRET_KEY is not set")
	}

	db, err := database.GetMainDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database failed to initialize: %w", err)
	}

	backends, err := connectBackends(ctx, cfg, log)
	if err != nil {
		backends.close()
		_ = db.Close()
		return nil, nil, err
	}

	s := New(cfg, log, db, backends)
	s.closers = append(s.closers, db.Close)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AdviceTimeout + 10*time.Second,
	}
	return server, s, nil
}

func (b Backends) close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.Mongo != nil {
		_ = b.Mongo.Disconnect(context.Background())
	}
	if b.Storage != nil {
		_ = b.Storage.Close()
	}
}

func connectBackends(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Backends, error) {
	var b Backends

	if cfg.RedisAddr != "" {
		client, err := config.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return b, fmt.Errorf("redis: %w", err)
		}
		b.Redis = client
		log.Info("Redis connected")
	}

	if cfg.MongoURI != "" {
		client, err := config.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return b, fmt.Errorf("mongo: %w", err)
		}
		b.Mongo = client
		log.Info("MongoDB connected")
	} else if cfg.UsageLogSink == "mongo" {
		return b, errors.New("AI_USAGE_LOG_SINK=mongo requires MONGO_URI")
	}

	if cfg.GCSBucket != "" {
		client, err := storage.NewCloudStorageClient(ctx, cfg.GCSBucket)
		if err != nil {
			return b, fmt.Errorf("cloud storage: %w", err)
		}
		b.Storage = client
		log.WithField("bucket", cfg.GCSBucket).Info("Cloud storage enabled")
	} else {
		log.Warn("GCS_BUCKET is not set, files are stored in the database")
	}

	switch cfg.AdviceProvider {
	case "gemini":
		provider, err := llm.NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return b, err
		}
		b.LLM = provider
	case "openai", "":
		if cfg.OpenAIKey == "" {
			log.Warn("OPENAI_API_KEY is not set, advice requests will fail")
		}
		b.LLM = llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.AdviceTimeout)
	default:
		return b, fmt.Errorf("unknown ADVICE_PROVIDER: %s", cfg.AdviceProvider)
	}

	return b, nil
}

// New wires services and stores over db. Nil backends fall back to in-process or
// database implementations.
func New(cfg *config.Config, log logrus.FieldLogger, db *database.DBinstanceStruct, b Backends) *MyServer {
	s := &MyServer{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Redis:   b.Redis,
		Mongo:   b.Mongo,
		Storage: b.Storage,
		Issuer:  auth.NewJwtIssuer(cfg.SecretKey, cfg.TokenTTL),
	}

	var jobCache *cache.RedisCache
	if b.Redis != nil {
		s.Broker = notify.NewRedisBroker(b.Redis, log)
		s.Blacklist = auth.NewRedisBlacklistStore(b.Redis)
		jobCache = cache.NewRedisCache(b.Redis)
		s.closers = append(s.closers, b.Redis.Close)
	} else {
		s.Broker = notify.NewMemoryBroker()
		memory := auth.NewInMemoryBlacklistStore()
		s.Blacklist = memory
		s.closers = append(s.closers, func() error { memory.Close(); return nil })
	}

	deps := service.Deps{
		DB:          db,
		Broker:      s.Broker,
		Cache:       jobCache,
		Log:         log,
		JobCacheTTL: cfg.JobCacheTTL,
	}
	if b.Storage != nil {
		deps.Storage = b.Storage
		s.closers = append(s.closers, b.Storage.Close)
	}
	s.Services = service.New(deps)

	var usage usagelog.Logger = usagelog.NewGormLogger(db.DB)
	if cfg.UsageLogSink == "mongo" && b.Mongo != nil {
		usage = usagelog.NewMongoLogger(b.Mongo.Database(cfg.MongoDatabase))
	}
	if b.Mongo != nil {
		mongoClient := b.Mongo
		s.closers = append(s.closers, func() error { return mongoClient.Disconnect(context.Background()) })
	}

	provider := b.LLM
	if provider == nil {
		provider = llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.AdviceTimeout)
	}
	s.Advisor = advisor.NewBridge(provider, s.Services.Advisory, usage, log)

	return s
}

// Close releases every backend in reverse order of acquisition.
func (s *MyServer) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
