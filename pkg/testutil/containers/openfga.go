//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// OpenFGAContainer wraps a testcontainers OpenFGA instance running with
// in-memory storage.
type OpenFGAContainer struct {
	Container testcontainers.Container
	APIURL    string
}

// NewOpenFGAContainer starts a new OpenFGA container.
func NewOpenFGAContainer(t *testing.T) *OpenFGAContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "openfga/openfga:v1.8.4",
			Cmd:          []string{"run"},
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForHTTP("/healthz").WithPort("8080/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start openfga container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get openfga host: %v", err)
	}
	port, err := container.MappedPort(ctx, "8080/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get openfga port: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	return &OpenFGAContainer{
		Container: container,
		APIURL:    fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
