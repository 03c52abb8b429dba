// Package media stores applicant uploads (profile photos, identity
// documents, receipts) in an S3 compatible bucket and hands back a public URL.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ziberlive/colive/pkg/idx"
	"github.com/ziberlive/colive/pkg/slogx"
)

// DefaultMaxBytes caps a single upload when no limit is configured.
const DefaultMaxBytes = 10 << 20

var (
	ErrUnavailable     = errors.New("media: upload storage is unavailable")
	ErrUnknownPreset   = errors.New("media: unknown upload preset")
	ErrTooLarge        = errors.New("media: file too large")
	ErrUnsupportedType = errors.New("media: unsupported file type")
	ErrEmpty           = errors.New("media: empty file")
)

// Preset selects the folder and the accepted content types of an upload.
type Preset string

const (
	PresetProfiles  Preset = "profiles"
	PresetDocuments Preset = "documents"
	PresetReceipts  Preset = "receipts"
)

var presetTypes = map[Preset][]string{
	PresetProfiles:  {"image/jpeg", "image/png", "image/webp"},
	PresetDocuments: {"image/jpeg", "image/png", "image/webp", "application/pdf"},
	PresetReceipts:  {"image/jpeg", "image/png", "image/webp", "application/pdf"},
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

func ParsePreset(s string) (Preset, bool) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	_, ok := presetTypes[p]
	return p, ok
}

// Upload describes a stored object.
type Upload struct {
	PublicID    string // object key, e.g. "documents/01J...pdf"
	SecureURL   string
	ContentType string
	Bytes       int64
}

// putObjectAPI is the slice of the S3 client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string // custom endpoint for S3 compatible stores, path style
	PublicBaseURL string // base of returned URLs, defaults to the bucket URL
	MaxBytes      int64
}

type Uploader struct {
	client   putObjectAPI
	bucket   string
	baseURL  string
	maxBytes int64
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
// An empty bucket yields an uploader that reports ErrUnavailable, as does a
// failed write to the bucket.
func NewS3Uploader(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return &Uploader{}, nil
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newUploader(client, cfg), nil
}

func newUploader(client putObjectAPI, cfg Config) *Uploader {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{client: client, bucket: cfg.Bucket, baseURL: base, maxBytes: maxBytes}
}

// Enabled reports whether uploads can be stored.
func (u *Uploader) Enabled() bool { return u != nil && u.client != nil }

// MaxBytes is the largest accepted upload.
func (u *Uploader) MaxBytes() int64 {
	if u == nil || u.maxBytes <= 0 {
		return DefaultMaxBytes
	}
	return u.maxBytes
}

// Upload stores body under the preset's folder. The content type is sniffed
// from the bytes; filename is only logged.
func (u *Uploader) Upload(ctx context.Context, preset Preset, filename string, body io.Reader) (Upload, error) {
	log := slogx.FromContext(ctx)

	if !u.Enabled() {
		return Upload{}, ErrUnavailable
	}
	allowed, ok := presetTypes[preset]
	if !ok {
		return Upload{}, ErrUnknownPreset
	}

	// 1. Read at most one byte past the limit.
	data, err := io.ReadAll(io.LimitReader(body, u.maxBytes+1))
	if err != nil {
		return Upload{}, err
	}
	if len(data) == 0 {
		return Upload{}, ErrEmpty
	}
	if int64(len(data)) > u.maxBytes {
		return Upload{}, ErrTooLarge
	}

	// 2. Check the sniffed type against the preset.
	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if !slices.Contains(allowed, contentType) {
		log.Info("rejected upload",
			slog.String("preset", string(preset)),
			slog.String("filename", filename),
			slog.String("content_type", contentType),
		)
		return Upload{}, ErrUnsupportedType
	}

	// 3. Store.
	key := path.Join(string(preset), idx.New().String()+extensions[contentType])
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error("failed to store upload", slog.String("key", key), slog.Any("error", err))
		return Upload{}, errors.Join(ErrUnavailable, fmt.Errorf("media: put object: %w", err))
	}

	log.Info("upload stored", slog.String("key", key), slog.Int("bytes", len(data)))
	return Upload{
		PublicID:    key,
		SecureURL:   u.baseURL + "/" + key,
		ContentType: contentType,
		Bytes:       int64(len(data)),
	}, nil
}
