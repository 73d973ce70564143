package storage

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// ImageMirror copies scraped product images into an S3 bucket so the
// site stops hotlinking retailer CDNs, which rewrite or expire image
// URLs without notice.
type ImageMirror struct {
	client *s3.Client
	bucket string
	region string
	http   *http.Client
}

// NewImageMirror initializes the S3 client from the default AWS config
// chain. Returns nil when no bucket is configured; callers skip
// mirroring in that case.
func NewImageMirror(ctx context.Context, bucket, region string) (*ImageMirror, error) {
	if bucket == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}
	return &ImageMirror{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		http:   &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Mirror downloads the image and uploads it under a content-addressed
// key, returning the bucket URL. On any failure the original URL is
// returned so the record still has a usable image.
func (m *ImageMirror) Mirror(ctx context.Context, imageURL string) string {
	if m == nil || imageURL == "" || !strings.HasPrefix(imageURL, "http") {
		return imageURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return imageURL
	}
	res, err := m.http.Do(req)
	if err != nil {
		log.WithFields(log.Fields{"image": imageURL, "error": err}).Warn("image download failed, keeping source URL")
		return imageURL
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return imageURL
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := objectKey(imageURL)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        res.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.WithFields(log.Fields{"image": imageURL, "error": err}).Warn("s3 upload failed, keeping source URL")
		return imageURL
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, key)
}

// objectKey derives a stable key from the source URL so repeated
// imports reuse the stored object instead of duplicating it.
func objectKey(imageURL string) string {
	h := fnv.New64a()
	h.Write([]byte(imageURL))

	ext := path.Ext(imageURL)
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("product_images/%x%s", h.Sum64(), ext)
}
