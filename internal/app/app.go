package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"talent-graph/internal/config"
	"talent-graph/internal/extract"
	"talent-graph/internal/guardrail"
	"talent-graph/internal/logger"
	"talent-graph/internal/model"
	"talent-graph/internal/repository"
	"talent-graph/internal/service"
	"talent-graph/internal/usecase"
)

// App wires the whole pipeline once at startup and hands the pieces to its
// entrypoints. All state lives here explicitly; after New returns, nothing
// reads or mutates package-level globals.
type App struct {
	Config    *config.AppConfig
	Log       *zap.Logger
	DB        *gorm.DB
	Redis     *redis.Client
	Ingestion *usecase.IngestionUsecase
	Search    *usecase.SearchUsecase
}

func New(ctx context.Context) (*App, error) {
	appCfg := config.LoadAppConfig()

	log, err := logger.New(appCfg.LogJSON, appCfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := connectDB(appCfg, log)
	if err != nil {
		return nil, err
	}

	// The embedding cache is optional: no address, no cache.
	var rdb *redis.Client
	redisCfg := config.LoadRedisConfig()
	if redisCfg.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, embedding cache disabled", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		}
	}

	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), log)
	if err != nil {
		return nil, err
	}
	var embedder service.EmbeddingProvider = gemini
	if rdb != nil {
		embedder = service.NewCachedEmbedder(gemini, rdb, redisCfg.CacheTTL, log)
	}

	ner := service.NewNERService(config.LoadNERConfig(), log)
	masker := guardrail.NewMasker(ner, config.LoadGuardrailConfig().Categories)

	lexicon := extract.DefaultLexicon()
	if path := config.LoadLexiconConfig().Path; path != "" {
		names, err := extract.LoadLexiconFile(path)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lexicon = extract.NewLexicon(names)
		log.Info("lexicon loaded", zap.String("path", path), zap.Int("skills", lexicon.Size()))
	}
	extractor := extract.NewExtractor(lexicon, nil)

	candidateRepo := repository.NewCandidateRepository(db)
	jobRepo := repository.NewJobRepository(db)

	return &App{
		Config:    appCfg,
		Log:       log,
		DB:        db,
		Redis:     rdb,
		Ingestion: usecase.NewIngestionUsecase(masker, extractor, embedder, candidateRepo, jobRepo, log),
		Search:    usecase.NewSearchUsecase(jobRepo, embedder, gemini, config.LoadSearchConfig(), log),
	}, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.Log.Sync()
}

func connectDB(appCfg *config.AppConfig, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := config.LoadDBConfig()
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbCfg.Host,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Name,
		dbCfg.Port,
		dbCfg.SSLMode,
		dbCfg.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if appCfg.Env != "production" {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetMaxOpenConns(200)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	// The vector type must exist before AutoMigrate touches the embedding column.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&model.Candidate{}, &model.Skill{}, &model.Job{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info("database ready",
		zap.String("host", dbCfg.Host),
		zap.String("database", dbCfg.Name))
	return db, nil
}
