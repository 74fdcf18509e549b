// Package diag captures failure screenshots, optionally archiving them to S3.
package diag

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/config"
)

// Putter is the slice of the S3 client used for archiving.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Capturer struct {
	dir    string
	s3     Putter
	bucket string
	prefix string

	Now func() time.Time
}

// New returns a capturer writing under cfg.Dir. When a bucket is configured
// an S3 client is built from the default AWS credential chain.
func New(ctx context.Context, cfg config.DiagConfig) (*Capturer, error) {
	c := &Capturer{dir: cfg.Dir, Now: time.Now}
	if cfg.S3Bucket == "" {
		return c, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("diag: aws config: %w", err)
	}
	return c.WithS3(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
}

func (c *Capturer) WithS3(p Putter, bucket, prefix string) *Capturer {
	c.s3, c.bucket, c.prefix = p, bucket, strings.Trim(prefix, "/")
	return c
}

// Capture saves a screenshot named <reason>-<listing>-<unix>.png and returns
// its local path, or "" when the page could not be captured.
func (c *Capturer) Capture(ctx context.Context, page browser.Page, reason, listingID string) string {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		log.Printf("[diag] mkdir %s: %v", c.dir, err)
		return ""
	}
	name := fmt.Sprintf("%s-%s-%d.png", safe(reason), safe(listingID), c.Now().Unix())
	p := filepath.Join(c.dir, name)

	if err := page.Screenshot(ctx, p); err != nil {
		log.Printf("[diag] screenshot %s: %v", name, err)
		return ""
	}
	log.Printf("[diag] saved %s", p)

	if c.s3 != nil {
		if err := c.upload(ctx, p, name); err != nil {
			log.Printf("[diag] s3 upload %s: %v", name, err)
		}
	}
	return p
}

func (c *Capturer) upload(ctx context.Context, local, name string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	key := name
	if c.prefix != "" {
		key = path.Join(c.prefix, name)
	}
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return err
	}
	log.Printf("[diag] archived s3://%s/%s", c.bucket, key)
	return nil
}

func safe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" {
		return "unknown"
	}
	return s
}
