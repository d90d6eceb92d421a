package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"marathon-api/internal/logger"
	"marathon-api/internal/metrics"
)

// objectAPI：S3 客户端中用到的方法，测试时可替换
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config：兼容 MinIO / R2，Endpoint 为空时使用 AWS 默认地址
type S3Config struct {
	Endpoint      string
	Region        string
	AccessKeyID   string
	SecretKey     string
	Bucket        string
	Prefix        string
	PublicBaseURL string
	UsePathStyle  bool
}

type S3 struct {
	api       objectAPI
	bucket    string
	prefix    string
	publicURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3(client, cfg), nil
}

func newS3(api objectAPI, cfg S3Config) *S3 {
	return &S3{
		api:       api,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *S3) key(storedPath string) string {
	if s.prefix == "" {
		return storedPath
	}
	return s.prefix + "/" + storedPath
}

// Save：上传对象
// 约束：请求体先读入内存，SDK 对不可 Seek 的流无法计算签名；单个媒体文件体积由上层限制。
func (s *S3) Save(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	rel, err := storedName(suggestedName)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(rel)),
		Body:   bytes.NewReader(b),
	}
	if ct := mime.TypeByExtension(path.Ext(rel)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", rel, err)
	}
	metrics.UploadBytes.Observe(float64(len(b)))
	logger.L().Debug("s3_saved", "key", s.key(rel), "bytes", len(b))
	return rel, nil
}

// Delete：S3 删除不存在的对象同样返回成功
func (s *S3) Delete(ctx context.Context, storedPath string) error {
	if storedPath == "" {
		return nil
	}
	if err := checkPath(storedPath); err != nil {
		return err
	}
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(storedPath)),
	})
	return err
}

func (s *S3) URL(storedPath string) string {
	if storedPath == "" {
		return ""
	}
	return s.publicURL + "/" + s.key(storedPath)
}
