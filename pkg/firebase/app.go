// Package firebase owns the single process-wide Firebase app. Every Firebase
// client (Firestore, Messaging) is derived from it.
package firebase

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type App struct {
	app *firebase.App

	mu        sync.Mutex
	firestore *firestore.Client
	messaging *messaging.Client
}

// NewApp initializes the Firebase app once at startup.
func NewApp(ctx context.Context, projectID, credentialsFile string) (*App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return &App{app: app}, nil
}

// Firestore returns the shared Firestore client, creating it on first use.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.firestore != nil {
		return a.firestore, nil
	}
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}
	a.firestore = client
	return client, nil
}

// Messaging returns the shared FCM client, creating it on first use.
func (a *App) Messaging(ctx context.Context) (*messaging.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.messaging != nil {
		return a.messaging, nil
	}
	client, err := a.app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	a.messaging = client
	return client, nil
}

// Close releases the Firestore connection.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.firestore != nil {
		err := a.firestore.Close()
		a.firestore = nil
		return err
	}
	return nil
}
