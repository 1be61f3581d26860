package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrumentsWithMeter(t *testing.T) {
	inst, _ := testInstruments(t)

	require.NotNil(t, inst.RequestsTotal)
	require.NotNil(t, inst.RequestDuration)
	require.NotNil(t, inst.ActiveConnections)
	require.NotNil(t, inst.UsersCreated)
	require.NotNil(t, inst.UsersDeleted)
}

func TestBusinessCounters(t *testing.T) {
	inst, reader := testInstruments(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		inst.RecordUserCreated(ctx, "development")
	}
	inst.RecordUserDeleted(ctx, "development")

	rm := collect(t, reader)

	created, found := counterValue(t, rm, "api_users_created_total", map[string]string{
		"source":      "api",
		"environment": "development",
	})
	require.True(t, found, "created counter must carry source and environment labels")
	assert.Equal(t, int64(3), created)

	deleted, found := counterValue(t, rm, "api_users_deleted_total", map[string]string{
		"source":      "api",
		"environment": "development",
	})
	require.True(t, found)
	assert.Equal(t, int64(1), deleted)
}
