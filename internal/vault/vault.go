package vault

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"leadswarm/internal/config"
)

const snapshotKey = "leads.csv"

// Vault mirrors the lead table to an S3-compatible bucket so a laptop wipe
// never loses the pipeline's memory. Sync failures are warnings, never fatal.
type Vault struct {
	client *minio.Client
	bucket string
	region string
}

// New connects and ensures the bucket exists. Credentials come from
// VAULT_ACCESS_KEY / VAULT_SECRET_KEY.
func New(ctx context.Context, cfg config.Config) (*Vault, error) {
	v := cfg.Vault
	if !v.Enabled {
		return nil, nil
	}
	access := os.Getenv("VAULT_ACCESS_KEY")
	secret := os.Getenv("VAULT_SECRET_KEY")
	if v.Endpoint == "" || access == "" || secret == "" {
		return nil, fmt.Errorf("vault enabled but endpoint or credentials missing")
	}

	cli, err := minio.New(v.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: v.UseSSL,
		Region: v.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, v.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, v.Bucket, minio.MakeBucketOptions{Region: v.Region}); err != nil {
			return nil, err
		}
	}

	return &Vault{client: cli, bucket: v.Bucket, region: v.Region}, nil
}

// SyncUp uploads a local CSV snapshot, keeping a dated copy alongside the
// rolling latest.
func (v *Vault) SyncUp(ctx context.Context, localPath string) error {
	if v == nil {
		return nil
	}
	opts := minio.PutObjectOptions{ContentType: "text/csv"}
	if _, err := v.client.FPutObject(ctx, v.bucket, snapshotKey, localPath, opts); err != nil {
		return fmt.Errorf("vault upload: %w", err)
	}
	dated := fmt.Sprintf("archive/leads-%s.csv", time.Now().UTC().Format("2006-01-02"))
	if _, err := v.client.FPutObject(ctx, v.bucket, dated, localPath, opts); err != nil {
		log.Printf("[vault] archive copy failed: %v", err)
	}
	return nil
}

// SyncDown restores the latest snapshot into localPath. A missing object is
// not an error, it just means nothing has been uploaded yet.
func (v *Vault) SyncDown(ctx context.Context, localPath string) (bool, error) {
	if v == nil {
		return false, nil
	}
	err := v.client.FGetObject(ctx, v.bucket, snapshotKey, localPath, minio.GetObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("vault download: %w", err)
	}
	return true, nil
}
