package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSStore menyimpan object di bucket Aliyun OSS.
type OSSStore struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string
	PublicBase string
}

func NewOSSStoreFromEnv(prefix string) (*OSSStore, error) {
	endpoint := strings.TrimSpace(os.Getenv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(os.Getenv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(os.Getenv("ALI_OSS_SECRET_KEY"))
	sts := strings.TrimSpace(os.Getenv("ALI_OSS_SECURITY_TOKEN"))
	bucketName := strings.TrimSpace(os.Getenv("ALI_OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []oss.ClientOption
	if sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	log.Printf("[OSS] bucket %s siap (endpoint=%s)", bucketName, endpoint)

	return &OSSStore{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		PublicBase: strings.TrimRight(strings.TrimSpace(os.Getenv("ALI_OSS_PUBLIC_BASE")), "/"),
	}, nil
}

func (s *OSSStore) Put(ctx context.Context, dir string, obj Object) (string, error) {
	key := buildObjectKey(s.Prefix, dir, obj.Filename)
	err := s.Bucket.PutObject(key, bytes.NewReader(obj.Data),
		oss.WithContext(ctx),
		oss.ContentType(obj.ContentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
	if err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *OSSStore) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromURL(ref)
	if err != nil {
		return err
	}
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSStore) PublicURL(key string) string {
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSStore) keyFromURL(publicURL string) (string, error) {
	if s.PublicBase != "" && strings.HasPrefix(publicURL, s.PublicBase+"/") {
		return strings.TrimPrefix(publicURL, s.PublicBase+"/"), nil
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i+1 < len(u) {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

// NewFromEnv memilih driver dari STORAGE_DRIVER (local|oss|memory).
func NewFromEnv() (FileStore, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER"))) {
	case "oss":
		return NewOSSStoreFromEnv(os.Getenv("ALI_OSS_PREFIX"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		base := os.Getenv("STORAGE_PUBLIC_BASE")
		if base == "" {
			base = "/uploads"
		}
		return NewLocalStore(os.Getenv("STORAGE_LOCAL_DIR"), base)
	}
}
