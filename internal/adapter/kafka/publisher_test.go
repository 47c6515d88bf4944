package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/turbine-catalog/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	importedAt := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	capacity := 2.5
	rec := domain.StoredTurbine{
		ID: "64f1c2",
		Turbine: domain.Turbine{
			Name:       "T1",
			Status:     "Active",
			CapacityMW: &capacity,
			ImportedAt: importedAt,
		},
	}

	msg, err := buildMessage("inserted", rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("T1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"action":"inserted"`)
	assert.Contains(t, string(msg.Value), `"id":"64f1c2"`)
	assert.Contains(t, string(msg.Value), `"capacity_mw":2.5`)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "action", msg.Headers[0].Key)
	assert.Equal(t, []byte("inserted"), msg.Headers[0].Value)
}
