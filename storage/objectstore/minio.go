// Package objectstore resolves stored cover-art references into fetchable
// URLs. References that are already absolute http(s) URLs pass through;
// anything else is treated as an object key and presigned.
package objectstore

import (
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
)

type MinioResolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

var _ cover.URLResolver = (*MinioResolver)(nil)

func NewMinioResolver(conf core.ObjectStoreConfig) (*MinioResolver, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to object store")
	}
	return &MinioResolver{
		client: client,
		bucket: conf.Bucket,
		expiry: conf.URLExpiry,
	}, nil
}

func (r *MinioResolver) ResolveURL(ctx context.Context, ref string) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	u, err := r.client.PresignedGetObject(ctx, r.bucket, strings.TrimPrefix(ref, "/"), r.expiry, nil)
	if err != nil {
		return "", errors.Wrapf(err, "presigning %q", ref)
	}
	return u.String(), nil
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
