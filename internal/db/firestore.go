package db

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirestoreConfig holds what is needed to reach a Firestore project.
type FirestoreConfig struct {
	ProjectID string
	// CredentialsFile is a service account key path. If both credential fields are
	// empty, Application Default Credentials are used.
	CredentialsFile       string
	CredentialsJSONBase64 string
}

// NewFirestoreClient initializes the Firebase Admin SDK and returns its Firestore client.
// The caller owns the client and must Close it.
func NewFirestoreClient(ctx context.Context, cfg FirestoreConfig, logger *zap.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", cfg.CredentialsFile))
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firestore credentials: %w", err)
		}
		logger.Info("Initializing Firebase with Base64 encoded service account JSON")
		opts = append(opts, option.WithCredentialsJSON(decoded))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("project_id", cfg.ProjectID))
	return client, nil
}
