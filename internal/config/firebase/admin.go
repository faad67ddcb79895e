package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/logging"
)

// Clients bundles the Firebase Admin services the backend uses.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
	// BucketName is the resolved storage bucket, used to build download URLs.
	BucketName string
}

// Initialize initializes the Firebase Admin SDK and its Auth, Firestore and
// Storage clients.
func Initialize(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Clients, error) {
	logger.Info("Initializing Firebase (project=%q, bucket=%q)", cfg.FirebaseProjectID, cfg.FirebaseStorageBucket)

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		logger.Info("Using service account key: %s", cfg.FirebaseCredentialsFile)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	fbConfig := &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to get Storage client: %w", err)
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to resolve storage bucket: %w", err)
	}

	logger.Info("Firebase clients initialized")

	return &Clients{
		App:        app,
		Auth:       authClient,
		Firestore:  fs,
		Bucket:     bucket,
		BucketName: cfg.FirebaseStorageBucket,
	}, nil
}

// Close releases the long-lived Firestore connection.
func (c *Clients) Close() error {
	if c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
