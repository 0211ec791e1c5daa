package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"pennywise/config"
	"pennywise/internal/database"
	"pennywise/internal/handler"
	"pennywise/internal/metrics"
	"pennywise/internal/parser"
	"pennywise/internal/queue"
	"pennywise/internal/service"
	"pennywise/internal/store"
	"pennywise/internal/worker"
	"pennywise/pkg/whatsapp"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := store.NewUsers(db)
	expenses := store.NewExpenses(db)

	wa := whatsapp.NewClient(cfg.GraphBaseURL, cfg.AccessToken, cfg.PhoneNumberID, cfg.AppSecret)

	var collector metrics.Collector = metrics.Noop{}
	if cfg.MetricsNamespace != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("AWS config for metrics: %v", err)
		}
		collector = metrics.NewCloudWatchCollector(
			cloudwatch.NewFromConfig(awsCfg), cfg.MetricsNamespace, map[string]string{"Service": "pennywise"})
		log.Printf("publishing metrics to CloudWatch namespace %s", cfg.MetricsNamespace)
	}

	var remote *parser.RemoteClient
	if cfg.ParserURL != "" {
		remote = parser.NewRemoteClient(cfg.ParserURL, cfg.ParserAPIKey)
		log.Printf("external text parser enabled at %s", cfg.ParserURL)
	}
	extractor := parser.NewExtractor(remote, collector)

	var outboundQueue *queue.SQS
	var outboundPub queue.Publisher
	if cfg.OutboundQueueURL != "" {
		outboundQueue, err = queue.NewSQS(ctx, cfg.OutboundQueueURL)
		if err != nil {
			log.Fatalf("outbound queue: %v", err)
		}
		outboundPub = outboundQueue
		log.Println("outbound notifications are queued")
	}
	notifier := queue.NewNotifier(outboundPub, wa)

	var inboundQueue *queue.SQS
	var inboundEnq service.InboundEnqueuer
	if cfg.InboundQueueURL != "" {
		inboundQueue, err = queue.NewSQS(ctx, cfg.InboundQueueURL)
		if err != nil {
			log.Fatalf("inbound queue: %v", err)
		}
		inboundEnq = queue.NewInboundQueue(inboundQueue)
		log.Println("inbound expenses are queued")
	}

	svc := service.NewMessageService(
		users,
		expenses,
		extractor,
		service.NewCurrencyResolver(users, cfg.DefaultCurrency),
		service.NewLimitPolicy(expenses, cfg.DailyLimitFree, cfg.DailyLimitPremium),
		notifier,
		inboundEnq,
	)

	if inboundQueue != nil {
		go worker.NewInbound(inboundQueue, svc).Run(ctx)
	}
	if outboundQueue != nil {
		go worker.NewOutbound(outboundQueue, wa).Run(ctx)
	}

	webhook := handler.NewWebhook(cfg.VerifyToken, wa, svc, collector)
	api := handler.NewAPI(cfg.APIToken, users, expenses)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /webhook", webhook.Verify)
	mux.HandleFunc("POST /webhook", webhook.Receive)
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /api/expenses", api.List)
	mux.HandleFunc("PATCH /api/expenses/{id}", api.Update)
	mux.HandleFunc("DELETE /api/expenses/{id}", api.Delete)
	mux.HandleFunc("POST /api/admin/premium", api.SetPremium)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("listening on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
