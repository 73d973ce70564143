package main

import (
	"context"
	"net/http"

	"github.com/didip/tollbooth/v7"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"dealradar/api"
	"dealradar/classify"
	"dealradar/config"
	"dealradar/fetcher"
	"dealradar/importer"
	"dealradar/notify"
	"dealradar/pipeline"
	"dealradar/scheduler"
	"dealradar/storage"
)

func main() {
	config.LoadConfig()

	if level, err := log.ParseLevel(config.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	store, err := buildStore(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	mirror, err := storage.NewImageMirror(ctx, config.AWSBucketName, config.AWSRegion)
	if err != nil {
		log.Fatalf("Failed to initialize image mirror: %v", err)
	}

	f := fetcher.New(fetcher.Config{EnableHeadless: config.EnableHeadless})

	var opts []pipeline.Option
	if ebay := fetcher.NewEbayClient(config.EbayAppID, config.EbayCertID); ebay != nil {
		opts = append(opts, pipeline.WithEbayClient(ebay))
		log.Info("eBay Browse API path enabled")
	}
	if config.GeminiAPIKey != "" {
		opts = append(opts, pipeline.WithGeminiClassifier(classify.NewGeminiClassifier(config.GeminiAPIKey)))
		log.Info("Gemini fallback classifier enabled")
	}
	pipe := pipeline.New(f, opts...)

	im := importer.New(pipe, store, mirror, config.ImportDelay)
	notifier := notify.NewNotifier(config.SendgridAPIKey, config.NotifyEmail)

	sched := scheduler.NewImportScheduler(im, notifier, config.ImportURLsFile, config.ImportCron)
	sched.Start()
	defer sched.Stop()

	router := mux.NewRouter()
	api.NewHandler(store, pipe, mirror).Register(router)

	limiter := tollbooth.NewLimiter(5, nil)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(tollbooth.LimitHandler(limiter, router))

	log.WithField("port", config.Port).Info("server starting")
	if err := http.ListenAndServe(":"+config.Port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func buildStore(ctx context.Context) (storage.ProductStore, error) {
	if config.StorageBackend == "mongo" {
		return storage.NewMongoStore(ctx, config.MongoURI, config.MongoDatabase)
	}
	return storage.NewJSONStore(config.ProductsFile)
}
