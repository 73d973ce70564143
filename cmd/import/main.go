// Command import runs a one-shot bulk import: product URLs from the
// command line, a URL list file, or a crawled listing page go through
// the extraction pipeline into the configured store.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"dealradar/classify"
	"dealradar/config"
	"dealradar/fetcher"
	"dealradar/importer"
	"dealradar/models"
	"dealradar/pipeline"
	"dealradar/storage"
)

func main() {
	crawl := flag.String("crawl", "", "listing page URL to crawl for product links instead of passing URLs directly")
	file := flag.String("file", "", "file with one product URL per line (# comments and blanks ignored)")
	category := flag.String("category", "", "category override applied to every imported product")
	flag.Parse()

	config.LoadConfig()
	if level, err := log.ParseLevel(config.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()

	var store storage.ProductStore
	var err error
	if config.StorageBackend == "mongo" {
		store, err = storage.NewMongoStore(ctx, config.MongoURI, config.MongoDatabase)
	} else {
		store, err = storage.NewJSONStore(config.ProductsFile)
	}
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
	}
	if config.GeminiAPIKey != "" {
		opts = append(opts, pipeline.WithGeminiClassifier(classify.NewGeminiClassifier(config.GeminiAPIKey)))
	}
	pipe := pipeline.New(f, opts...)

	urls := flag.Args()
	if *file != "" {
		fromFile, err := readURLFile(*file)
		if err != nil {
			log.Fatalf("Failed to read URL file: %v", err)
		}
		urls = append(urls, fromFile...)
	}
	if *crawl != "" {
		crawler := importer.NewCrawler(config.ImportDelay, 50)
		crawled, err := crawler.CollectProductLinks(*crawl)
		if err != nil {
			log.Fatalf("Failed to crawl listing page: %v", err)
		}
		urls = append(urls, crawled...)
	}
	if len(urls) == 0 {
		log.Error("no URLs to import; pass product URLs as arguments or use -file / -crawl")
		os.Exit(1)
	}

	im := importer.New(pipe, store, mirror, config.ImportDelay)
	summary := im.Run(ctx, urls, models.Category(*category))
	if summary.Failed == summary.Total {
		os.Exit(1)
	}
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
