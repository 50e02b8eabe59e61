package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natsPort = nat.Port("4222/tcp")

// SetupNatsContainer starts a NATS server and returns the container and its
// nats:// URL. The caller is responsible for terminating the container.
func SetupNatsContainer(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{string(natsPort)},
			WaitingFor: wait.ForAll(
				wait.ForLog("Server is ready"),
				wait.ForListeningPort(natsPort),
			).WithDeadline(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("failed to start NATS container: %w", err)
	}

	addr, err := endpoint(ctx, container, natsPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}

	natsURL := "nats://" + addr
	log.Printf("NATS container ready: %s", natsURL)
	return container, natsURL, nil
}
