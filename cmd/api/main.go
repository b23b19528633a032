package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/aws"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/backend"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/config"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/drafts"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/handlers"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/idempotency"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/submissions"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/validation"
)

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	// in production only the configured origins; elsewhere allow all for local clients
	if cfg.Production {
		c.AllowOrigins = cfg.AllowedOrigins
	} else {
		c.AllowAllOrigins = true
	}
	c.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	c.AddAllowHeaders("Origin", "Content-Type", "Authorization", "Idempotency-Key")
	c.AddExposeHeaders("Content-Length", "Location", "Idempotency-Key")
	return c
}

func setupRouter(cfg *config.Config, hcfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORS)))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, hcfg)

	return r
}

// draftStore picks Redis when an address is configured so drafts and the
// submission guard are shared across instances; otherwise both stay in process.
func draftStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (drafts.Repository, drafts.Guard) {
	if cfg.Redis.Address == "" {
		log.Info("REDIS_ADDRESS not set; keeping drafts in memory")
		return drafts.NewMemoryRepository(cfg.Redis.DraftTTL), drafts.NewLocalGuard()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.Redis.Address).Fatal("failed to connect redis")
	}
	log.WithField("addr", cfg.Redis.Address).Info("connected to redis")
	return drafts.NewRedisRepository(rdb, cfg.Redis.DraftTTL), drafts.NewRedisGuard(rdb, cfg.Redis.LockTTL)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel)
	ctx := context.Background()

	clients, err := aws.NewAWSClients(ctx, aws.Options{
		Region:           cfg.AWS.Region,
		EndpointOverride: cfg.AWS.EndpointOverride,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init aws clients")
	}

	idemStore := idempotency.NewStore(clients.DynamoDB, cfg.AWS.IdempotencyTable, cfg.AWS.IdempotencyTTL)
	var subStore *submissions.Store
	if cfg.AWS.SubmissionsTable != "" {
		subStore = submissions.NewStore(clients.DynamoDB, cfg.AWS.SubmissionsTable)
	}
	ledger := submissions.NewLedger(idemStore, subStore, log)

	repo, guard := draftStore(ctx, cfg, log)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	v := validation.New()

	svcCfg := drafts.ServiceConfig{
		Repository: repo,
		Guard:      guard,
		Backend:    client,
		Ledger:     ledger,
		Validator:  v,
		Logger:     log,
	}
	if cfg.AWS.EventsQueueURL != "" {
		svcCfg.Events = aws.NewPublisher(clients.SQS, cfg.AWS.EventsQueueURL)
	}

	r := setupRouter(cfg, handlers.HandlerConfig{
		Drafts:    drafts.NewService(svcCfg),
		Orders:    client,
		Validator: v,
		Logger:    log,
	})

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.Server.RunLocal {
		srv := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.WithField("addr", srv.Addr).Info("running local server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
