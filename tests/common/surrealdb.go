package common

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container settings for the shared SurrealDB test instance. The store tests
// carve out a unique database per test inside the folio_test namespace, so
// one container serves the whole run.
const (
	surrealImage    = "surrealdb/surrealdb:v3.0.0"
	surrealPort     = "8000/tcp"
	surrealRootUser = "root"
	surrealRootPass = "root"
	startDeadline   = 60 * time.Second
)

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer is a handle to the shared SurrealDB test container.
type SurrealDBContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// StartSurrealDB returns the run-wide SurrealDB container, starting it on
// first use. Failures fatal the calling test.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	surrealOnce.Do(func() {
		surrealContainer, surrealError = startContainer(context.Background())
	})
	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealContainer
}

func startContainer(ctx context.Context) (*SurrealDBContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        surrealImage,
		ExposedPorts: []string{surrealPort},
		Cmd:          []string{"start", "--user", surrealRootUser, "--pass", surrealRootPass},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(surrealPort),
			wait.ForLog("Started web server"),
		).WithDeadline(startDeadline),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", surrealImage, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("resolve container host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, surrealPort)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("resolve mapped port: %w", err)
	}

	return &SurrealDBContainer{
		container: container,
		host:      host,
		port:      mappedPort.Port(),
	}, nil
}

// Address returns the WebSocket RPC address the storage manager connects to.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// Credentials returns the root user and password the container was started
// with.
func (c *SurrealDBContainer) Credentials() (user, pass string) {
	return surrealRootUser, surrealRootPass
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *SurrealDBContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
