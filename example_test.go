package bucketsync_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/perigee-io/bucketsync"
	"github.com/perigee-io/bucketsync/config"
	"github.com/perigee-io/bucketsync/progress"
	"github.com/perigee-io/bucketsync/synctypes"
)

// ExampleNew demonstrates connecting to an S3-compatible endpoint and
// pushing a local directory.
func ExampleNew() {
	storage, err := bucketsync.New(synctypes.StorageConfig{
		Provider:   synctypes.ProviderMinIO,
		Key:        "minio-access-key",
		Secret:     synctypes.Secret(os.Getenv("STORAGE_SECRET")),
		Bucket:     "datasets",
		Host:       "localhost",
		Port:       9000,
		DisableSSL: true,
		BasePath:   "v1",
	}, bucketsync.WithLogger(zerolog.New(os.Stderr)))
	if err != nil {
		log.Fatal(err)
	}

	// Make sure the bucket exists; an already existing one is tolerated.
	if err := storage.CreateBucket(context.Background()); err != nil {
		log.Fatal(err)
	}

	// Push everything under ./data; remote paths mirror the layout below
	// the prefix, scoped under the base path.
	summary, err := storage.Push(context.Background(), "data", bucketsync.WithPrefix("."))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(summary.Overview())
}

// ExampleRemoteStorage_Push_dryRun demonstrates inspecting a transaction
// before running it.
func ExampleRemoteStorage_Push_dryRun() {
	storage, err := bucketsync.New(synctypes.StorageConfig{
		Provider: synctypes.ProviderS3,
		Bucket:   "datasets",
		Region:   "eu-central-1",
	})
	if err != nil {
		log.Fatal(err)
	}

	summary, err := storage.Push(context.Background(), "logs/**/*.json",
		bucketsync.WithPrefix("."),
		bucketsync.WithDryRun(true),
		bucketsync.WithExcludePattern(`logs/tmp/.*`))
	if err != nil {
		log.Fatal(err)
	}

	for _, entry := range summary.FilesToSync() {
		fmt.Printf("would push %s\n", entry.Name())
	}
}

// ExampleRemoteStorage_Pull demonstrates pulling a remote directory into a
// local one, overwriting files whose content differs.
func ExampleRemoteStorage_Pull() {
	storage, err := bucketsync.New(synctypes.StorageConfig{
		Provider: synctypes.ProviderS3,
		Bucket:   "datasets",
		Region:   "eu-central-1",
	})
	if err != nil {
		log.Fatal(err)
	}

	summary, err := storage.Pull(context.Background(), "data", ".",
		bucketsync.WithForce(true),
		bucketsync.WithProgress(progress.NewCallbackTracker(func(u progress.Update) {
			fmt.Printf("\r%s / %s", progress.FormatBytes(u.BytesTransferred), progress.FormatBytes(u.BytesTotal))
		})))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("pulled %d files\n", len(summary.SyncedFiles))
}

// ExampleRemoteStorage_Delete demonstrates deleting a remote directory while
// keeping a subset of its objects.
func ExampleRemoteStorage_Delete() {
	storage, err := bucketsync.New(synctypes.StorageConfig{
		Provider: synctypes.ProviderS3,
		Bucket:   "datasets",
		Region:   "eu-central-1",
	})
	if err != nil {
		log.Fatal(err)
	}

	deleted, err := storage.Delete(context.Background(), "runs/2024",
		bucketsync.WithExcludePattern(`runs/2024/keep/.*`))
	if err != nil {
		log.Fatal(err)
	}

	for _, obj := range deleted {
		fmt.Printf("deleted %s\n", obj.Name())
	}
}

// Example_loadFromConfig demonstrates wiring the layered configuration
// loader to the storage facade. Secrets referenced with the env: marker are
// resolved from the environment at lookup time.
func Example_loadFromConfig() {
	loader, err := config.NewLoader("config")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := loader.RemoteStorage()
	if err != nil {
		log.Fatal(err)
	}

	storage, err := bucketsync.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	summary, err := storage.Pull(context.Background(), "", "data")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(summary.Overview())
}
