package storage

import (
	"bytes"
	"context"
	"fmt"

	"trial-hand/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client erstellt einen S3-Client für Strato HiDrive.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.StratoS3URL,
				SigningRegion:     cfg.StratoS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.StratoS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StratoS3Key, cfg.StratoS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// SnapshotArchive legt die Roh-Snapshots der Studien als JSON im S3 ab. Pro
// (tenant, nctID) existiert genau ein Objekt, das bei jedem verarbeiteten Sync
// überschrieben wird.
type SnapshotArchive struct {
	Client *s3.Client
	Config *config.Config
}

// NewSnapshotArchive erstellt ein neues Snapshot-Archiv.
func NewSnapshotArchive(client *s3.Client, cfg *config.Config) *SnapshotArchive {
	return &SnapshotArchive{Client: client, Config: cfg}
}

// Archive lädt den Roh-Snapshot einer Studie ins S3 hoch.
func (a *SnapshotArchive) Archive(ctx context.Context, tenant, nctID string, raw []byte) error {
	key := fmt.Sprintf("snapshots/%s/%s.json", tenant, nctID)
	contentType := "application/json"
	_, err := a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.Config.StratoS3Bucket,
		Key:         &key,
		Body:        bytes.NewReader(raw),
		ContentType: &contentType,
	})
	return err
}
