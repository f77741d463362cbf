package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/cache"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/tts"
)

// buildGenerator constructs the synthesis backend from configuration.
func buildGenerator(cfg *Config) (tts.Generator, error) {
	switch cfg.Provider {
	case "stream":
		if cfg.StreamURL == "" {
			return nil, errors.New("provider \"stream\" requires stream_url in the config")
		}
		return tts.NewStream(cfg.StreamURL, cfg.StreamToken), nil
	case "", "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("no API key: set api_key in the config or OPENAI_API_KEY")
		}
		var opts []tts.Option
		if cfg.BaseURL != "" {
			opts = append(opts, tts.WithBaseURL(cfg.BaseURL))
		}
		return tts.NewOpenAI(apiKey, opts...), nil
	default:
		return nil, errors.New("unknown provider " + cfg.Provider)
	}
}

// buildCache constructs the audio cache from configuration: S3 when a
// bucket is configured, otherwise a local BadgerDB directory.
func buildCache(cfg *Config) (cache.Store, error) {
	if cfg.S3.Bucket != "" {
		opts := s3sdk.Options{Region: cfg.S3.Region}
		if cfg.S3.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		if cfg.S3.AccessKey != "" {
			ak, sk := cfg.S3.AccessKey, cfg.S3.SecretKey
			opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: ak, SecretAccessKey: sk}, nil
			})
		}
		return cache.NewS3(s3sdk.New(opts), cfg.S3.Bucket, cfg.S3.Prefix), nil
	}

	dir := cfg.CacheDir
	if dir == "" {
		base, err := baseDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return cache.NewBadger(cache.BadgerOptions{Dir: dir})
}

// snippet shortens s for bookmark and display purposes.
func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max]) + "…"
}
