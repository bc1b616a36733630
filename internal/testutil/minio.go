package testutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/perigee-io/bucketsync/synctypes"
)

// minioImage pins the MinIO release integration tests run against.
const minioImage = "minio/minio:RELEASE.2024-01-16T16-07-38Z"

// MinIOContainer wraps a MinIO container for integration testing. Both
// drivers can run against it: the minio driver natively and the s3 driver
// through its custom endpoint support.
type MinIOContainer struct {
	container *minio.MinioContainer
	host      string
	port      int
}

// NewMinIOContainer creates and starts a MinIO container ready for
// testing.
func NewMinIOContainer(ctx context.Context, t *testing.T) (*MinIOContainer, error) {
	t.Helper()

	container, err := minio.Run(ctx, minioImage)
	if err != nil {
		return nil, fmt.Errorf("failed to start MinIO container: %w", err)
	}

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container endpoint: %w", err)
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to split endpoint %q: %w", endpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to parse port %q: %w", portStr, err)
	}

	return &MinIOContainer{
		container: container,
		host:      host,
		port:      port,
	}, nil
}

// StorageConfig returns a config pointing the given provider at the
// container.
func (c *MinIOContainer) StorageConfig(provider, bucket string) synctypes.StorageConfig {
	return synctypes.StorageConfig{
		Provider:   provider,
		Key:        c.container.Username,
		Secret:     synctypes.Secret(c.container.Password),
		Bucket:     bucket,
		Region:     "us-east-1",
		Host:       c.host,
		Port:       c.port,
		DisableSSL: true,
	}
}

// Endpoint returns the host:port of the container.
func (c *MinIOContainer) Endpoint() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Terminate stops and removes the container.
func (c *MinIOContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}
