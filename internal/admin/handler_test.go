// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(n int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, nil }
}

func TestDashboardGathersCounters(t *testing.T) {
	h := NewHandler(HandlerConfig{Counters: Counters{
		Users:      constant(12),
		PendingTx:  constant(3),
		PendingKYC: constant(2),
		Reports:    constant(5),
		ListingsByState: func(context.Context) (map[string]int, error) {
			return map[string]int{"approved": 7, "pending": 1}, nil
		},
	}})

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 12, body.Data.Users)
	assert.Equal(t, 3, body.Data.PendingTransactions)
	assert.Equal(t, 2, body.Data.PendingKYC)
	assert.Equal(t, 5, body.Data.Reports)
	assert.Equal(t, 7, body.Data.Listings["approved"])
}

func TestDashboardFailsWhenACounterFails(t *testing.T) {
	h := NewHandler(HandlerConfig{Counters: Counters{
		Users: func(context.Context) (int, error) { return 0, errors.New("db gone") },
	}})

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSystemProbesEachDependency(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats { return sql.DBStats{OpenConnections: 4, InUse: 1} },
		DBPing:  func(context.Context) error { return nil },
		RedisPing: func(context.Context) error {
			return errors.New("refused")
		},
	})

	rec := httptest.NewRecorder()
	h.GetSystem(rec, httptest.NewRequest(http.MethodGet, "/admin/system", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Dependencies, 2)

	pg, rd := body.Data.Dependencies[0], body.Data.Dependencies[1]
	assert.Equal(t, "postgres", pg.Name)
	assert.True(t, pg.Healthy)
	require.NotNil(t, pg.Pool)
	assert.Equal(t, 4, pg.Pool.Open)
	assert.Equal(t, 1, pg.Pool.InUse)

	assert.Equal(t, "redis", rd.Name)
	assert.False(t, rd.Healthy)
	assert.Equal(t, "refused", rd.Error)
	assert.Nil(t, rd.Pool)
	assert.NotEmpty(t, body.Data.Runtime.GoVersion)
}

func TestDashboardWithoutListingCounter(t *testing.T) {
	d, err := Counters{Users: constant(1)}.collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Users)
	assert.NotNil(t, d.Listings)
}
