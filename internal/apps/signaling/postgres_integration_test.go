//go:build integration

package signaling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm/logger"
)

func setupPostgresService(t *testing.T) *SignalService {
	t.Helper()
	if err := testcontainers.SkipIfDockerNotAvailable(); err != nil {
		t.Skip("docker not available for testcontainers")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "spysignal",
				"POSTGRES_PASSWORD": "spysignal",
				"POSTGRES_DB":       "spysignal",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:   config.DriverPostgres,
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "spysignal",
		DBPassword: "spysignal",
		DBName:     "spysignal",
		DBSSLMode:  "disable",
	}

	gdb, err := database.Connect(cfg)
	for attempt := 0; err != nil && attempt < 10; attempt++ {
		time.Sleep(500 * time.Millisecond)
		gdb, err = database.Connect(cfg)
	}
	require.NoError(t, err)
	gdb.Logger = logger.Discard
	t.Cleanup(func() { _ = database.Close(gdb) })

	require.NoError(t, database.Migrate(gdb, &CallSignal{}))
	return NewSignalService(gdb, nil)
}

func TestSignalService_PostgresConcurrentPolls(t *testing.T) {
	svc := setupPostgresService(t)
	ctx := context.Background()

	const total = 200
	for i := 0; i < total; i++ {
		from, to := uint(1), uint(9)
		_, err := svc.Submit(ctx, KindCandidate, &SubmitRequest{FromID: &from, ToID: &to, Content: []byte(`"candidate"`)})
		require.NoError(t, err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[uint]int{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				got, err := svc.Poll(ctx, 9)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				for _, s := range got {
					seen[s.ID]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "signal %d delivered more than once", id)
	}
}
