package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"trove-sync-go/internal/config"
)

// Clients bundles the Firebase-backed clients the rest of the application
// injects explicitly. There are no package-level globals; main wires these
// into whoever needs them.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore
// and Auth clients. Credentials come from a service account file, a base64
// encoded service account JSON, or Application Default Credentials, in that
// order of preference.
func InitFirebase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	if cfg == nil {
		return nil, fmt.Errorf("InitFirebase: cfg cannot be nil")
	}

	var credsOption option.ClientOption
	switch {
	case cfg.GoogleApplicationCredentials != "":
		if _, err := os.Stat(cfg.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("credentials file does not exist, relying on SDK fallback",
				zap.String("path", cfg.GoogleApplicationCredentials))
		}
		credsOption = option.WithCredentialsFile(cfg.GoogleApplicationCredentials)
		logger.Info("initializing Firebase with credentials file",
			zap.String("path", cfg.GoogleApplicationCredentials))
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		credsOption = option.WithCredentialsJSON(decoded)
		logger.Info("initializing Firebase with base64 service account JSON")
	default:
		logger.Info("initializing Firebase with Application Default Credentials")
	}

	var appConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	var app *firebase.App
	var err error
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, appConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, appConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close() // best effort
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}
