package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/products-service/internal/config"
	httpAPI "github.com/mkravets/products-service/internal/http"
	"github.com/mkravets/products-service/internal/http/controller"
	"github.com/mkravets/products-service/internal/logger"
	"github.com/mkravets/products-service/internal/metrics"
	"github.com/mkravets/products-service/internal/repository/sql"
	"github.com/mkravets/products-service/internal/rpc"
	"github.com/mkravets/products-service/internal/rpc/rabbitmq"
	"github.com/mkravets/products-service/internal/service"
	sqspkg "github.com/mkravets/products-service/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	productRepository := sql.NewProductRepository(db)

	// Event publishing is optional: without a queue URL the service still
	// serves its RPC surface, it just stays silent about catalog changes.
	var publisher *sqspkg.Publisher
	if conf.AWS.SQSQueueURL != "" {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("loading AWS config", err)
		publisher = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
	}

	productService := service.NewProductService(productRepository, publisher)
	router := rpc.NewRouter(productService)

	rpcServer, err := rabbitmq.NewServer(rabbitmq.Config{
		URL:   conf.AMQP.URL,
		Queue: conf.AMQP.Queue,
	}, router)
	handleErr("connecting to RabbitMQ", err)
	defer rpcServer.Close()

	// Operational HTTP server: liveness, readiness.
	go func() {
		ctr := controller.New(db)
		opsServer := httpAPI.InitRouter(gin.Default(), ctr)
		if err := opsServer.Run(":" + conf.OpsServer.Port); err != nil {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metrics.StartMetricsServer(conf)

	if err := rpcServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		handleErr("consuming RPC requests", err)
	}

	log.Println("Shutting down gracefully...")
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
