package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	apperrors "github.com/leeforge/picture/errors"
)

// OSSProvider stores files in an Aliyun OSS bucket. Objects have no local
// path, so their URLs are never rewritten relative to a web root.
type OSSProvider struct {
	client     *oss.Client
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	domain     string // Custom domain or CDN domain
	prefix     string
}

// NewOSSProvider creates a new OSS storage provider
// Endpoint: oss-cn-hangzhou.aliyuncs.com
func NewOSSProvider(endpoint, accessKeyID, accessKeySecret, bucketName, domain, prefix string) (*OSSProvider, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	if domain == "" {
		domain = fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	} else if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}

	return &OSSProvider{
		client:     client,
		bucket:     bucket,
		endpoint:   endpoint,
		bucketName: bucketName,
		domain:     strings.TrimSuffix(domain, "/"),
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (p *OSSProvider) objectKey(name string) (string, error) {
	key, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if p.prefix != "" {
		key = path.Join(p.prefix, key)
	}
	return key, nil
}

func (p *OSSProvider) object(name, key string, size int64) Object {
	return Object{
		Name: name,
		URL:  p.domain + "/" + key,
		Size: size,
	}
}

// Put uploads a file to OSS. The SDK version in use takes no context.
func (p *OSSProvider) Put(ctx context.Context, name string, r io.Reader) (Object, error) {
	key, err := p.objectKey(name)
	if err != nil {
		return Object{}, err
	}

	counter := &countingReader{r: r}
	if err := p.bucket.PutObject(key, counter); err != nil {
		return Object{}, apperrors.NewStorage(err, "failed to upload to OSS")
	}
	return p.object(name, key, counter.n), nil
}

// Stat checks if a file exists in OSS
func (p *OSSProvider) Stat(ctx context.Context, name string) (Object, bool, error) {
	key, err := p.objectKey(name)
	if err != nil {
		return Object{}, false, err
	}

	exists, err := p.bucket.IsObjectExist(key)
	if err != nil || !exists {
		return Object{}, false, err
	}

	meta, err := p.bucket.GetObjectDetailedMeta(key)
	if err != nil {
		return Object{}, false, apperrors.NewStorage(err, "failed to read OSS object meta")
	}
	size, _ := strconv.ParseInt(meta.Get("Content-Length"), 10, 64)
	return p.object(name, key, size), true, nil
}

func (p *OSSProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := p.objectKey(name)
	if err != nil {
		return nil, err
	}
	body, err := p.bucket.GetObject(key)
	if err != nil {
		return nil, apperrors.NewStorage(err, "failed to download from OSS")
	}
	return body, nil
}

// Delete removes a file from OSS
func (p *OSSProvider) Delete(ctx context.Context, name string) error {
	key, err := p.objectKey(name)
	if err != nil {
		return err
	}
	if err := p.bucket.DeleteObject(key); err != nil {
		return apperrors.NewStorage(err, "failed to delete from OSS")
	}
	return nil
}

func (p *OSSProvider) Name() string {
	return "oss"
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}

var _ Provider = (*OSSProvider)(nil)
