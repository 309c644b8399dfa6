// Package firebasetest starts a Firestore emulator for repository tests.
package firebasetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	emulatorImage = "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators"
	projectID     = "trialfinder-test"
)

// NewFirestore starts an emulator container and returns a client connected to
// it. The test is skipped when no container runtime is available.
func NewFirestore(t *testing.T) *firestore.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        emulatorImage,
			ExposedPorts: []string{"8080/tcp"},
			Cmd: []string{"/bin/sh", "-c",
				"gcloud emulators firestore start --host-port=0.0.0.0:8080 --project=" + projectID},
			WaitingFor: wait.ForLog("running").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	t.Setenv("FIRESTORE_EMULATOR_HOST", fmt.Sprintf("%s:%s", host, port.Port()))

	client, err := firestore.NewClient(ctx, projectID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
