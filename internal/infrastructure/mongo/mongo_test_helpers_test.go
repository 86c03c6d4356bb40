package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/garikaib/rates-scrapper/internal/infrastructure/mongo"

	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.uber.org/zap"
)

func withMongo(t *testing.T) *mongo.Dialer {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run containerized mongo tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := tcmongo.RunContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	return &mongo.Dialer{
		URI:        uri,
		Database:   "fx-rates",
		Collection: "fx-rates",
		Timeout:    10 * time.Second,
		Log:        zap.NewNop(),
	}
}
