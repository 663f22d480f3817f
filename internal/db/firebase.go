package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"hotelmetrics/internal/config"
)

// ErrNoFirebaseCredentials is returned when neither a credentials file nor
// the FIREBASE_* service account variables are configured.
var ErrNoFirebaseCredentials = fmt.Errorf("firebase credentials missing")

// FirestoreConfigured reports whether any Firebase credential source is set.
func FirestoreConfigured(cfg *config.Config) bool {
	return cfg.FirebaseCredentialsFile != "" ||
		(cfg.FirebaseProjectID != "" && cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "")
}

// ConnectFirestore initializes the Firebase Admin SDK and returns a
// Firestore client. The credentials file takes precedence; otherwise a
// service account is assembled from FIREBASE_PROJECT_ID,
// FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY.
func ConnectFirestore(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	opt, err := firebaseCredentials(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	return client, nil
}

func firebaseCredentials(cfg *config.Config) (option.ClientOption, error) {
	if path := cfg.FirebaseCredentialsFile; path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("firebase credentials file not found: %s", path)
		}
		return option.WithCredentialsFile(path), nil
	}

	if cfg.FirebaseProjectID == "" || cfg.FirebaseClientEmail == "" || cfg.FirebasePrivateKey == "" {
		return nil, ErrNoFirebaseCredentials
	}
	// Private keys pasted into env files usually carry literal "\n".
	key := strings.ReplaceAll(cfg.FirebasePrivateKey, `\n`, "\n")
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.FirebaseProjectID,
		"client_email": cfg.FirebaseClientEmail,
		"private_key":  key,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}
	return option.WithCredentialsJSON(creds), nil
}
