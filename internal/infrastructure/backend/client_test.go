package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/infrastructure/backend"
)

type fakeTokens struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", domain.ErrNoSession
	}
	return f.token, nil
}

func (f *fakeTokens) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.token = ""
	return nil
}

func newTestClient(t *testing.T, mux *http.ServeMux) (*backend.Client, *fakeTokens) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := backend.NewClient(srv.URL+"/api/", 0, nil)
	tokens := &fakeTokens{token: "tok-123"}
	c.UseTokens(tokens)
	return c, tokens
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetWarehouseStats_EnviaBearerYAceptaStrings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/warehouse-stats", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"first_stock":"120","receiving":30,"shipping":"10.0","warehouse_stock":140}`))
	})
	c, _ := newTestClient(t, mux)

	stats, err := c.GetWarehouseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.FirstStock)
	assert.Equal(t, int64(30), stats.Receiving)
	assert.Equal(t, int64(10), stats.Shipping)
	assert.Equal(t, int64(140), stats.WarehouseStock)
}

func TestGetDailyChart_YResumenes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/daily-chart", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"2026-03-01","receiving":5,"shipping":2},{"date":"2026-03-02","receiving":"7","shipping":0}]`))
	})
	mux.HandleFunc("/api/dashboard/shift-scan", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"username":"op1","total":12,"percent":"66.67","status":1}]`))
	})
	mux.HandleFunc("/api/dashboard/warehouse-items", func(w http.ResponseWriter, r *http.Request) {
		// respuesta envuelta en {success, data}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"item":"SHOES","total":"70","status":2}]}`))
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	chart, err := c.GetDailyChart(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 2)
	assert.Equal(t, "2026-03-01", chart[0].Date)
	assert.Equal(t, int64(7), chart[1].ReceivingTotal)

	shift, err := c.GetShiftScan(ctx)
	require.NoError(t, err)
	require.Len(t, shift, 1)
	assert.True(t, decimal.RequireFromString("66.67").Equal(shift[0].Percent))

	items, err := c.GetWarehouseItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(70), items[0].Total)
	assert.Equal(t, 2, items[0].Status)
}

func TestGetReceivingList_ParseaFechas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/receiving-list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"date_time":"2026-03-02 08:15:00","original_barcode":"BC2","model":"AIR","color":"RED","size":"41","quantity":2,"username":"op1","scan_no":2},
			{"date_time":"2026-03-02T08:00:00Z","original_barcode":"BC1","model":"AIR","color":"RED","size":"41","quantity":1,"username":"op1","scan_no":1}
		]`))
	})
	mux.HandleFunc("/api/dashboard/shipping-list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date_time":"ayer","original_barcode":"X","quantity":1}]`))
	})
	c, _ := newTestClient(t, mux)

	list, err := c.GetReceivingList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BC2", list[0].Barcode)
	assert.Equal(t, int64(2), list[0].SequenceID)
	assert.Equal(t, 8, list[0].Timestamp.Hour())

	_, err = c.GetShippingList(context.Background())
	assert.Error(t, err)
}

func TestErrores_MapeoDeStatus(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{http.StatusForbidden, `{}`, domain.ErrForbidden, ""},
		{http.StatusNotFound, `{}`, domain.ErrNotFound, ""},
		{http.StatusBadRequest, `{"error":"warehouse_id requerido"}`, domain.ErrInvalidInput, "warehouse_id requerido"},
		{http.StatusBadRequest, `{}`, domain.ErrInvalidInput, "solicitud inválida"},
		{http.StatusInternalServerError, `{"error":"boom"}`, domain.ErrServer, ""},
		{http.StatusTeapot, `{"error":"raro"}`, domain.ErrServer, "raro"},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/dashboard/warehouse-stats", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			c, tokens := newTestClient(t, mux)

			_, err := c.GetWarehouseStats(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var serr *domain.StatusError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tc.status, serr.Status)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, serr.Error())
			}
			assert.Zero(t, tokens.invalidated, "solo un 401 cierra la sesión")
		})
	}
}

func TestErrores_401CierraSesion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/warehouse-stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expirado"})
	})
	c, tokens := newTestClient(t, mux)

	_, err := c.GetWarehouseStats(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, tokens.invalidated)
}

func TestErrores_FalloDeRed(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	url := srv.URL
	srv.Close()

	c := backend.NewClient(url, 0, nil)
	_, err := c.GetWarehouseStats(context.Background())

	assert.ErrorIs(t, err, domain.ErrNetwork)
	var serr *domain.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 0, serr.Status)
}

func TestErrores_EnvelopeSinExito(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/daily-chart", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"sin datos"}`))
	})
	c, _ := newTestClient(t, mux)

	_, err := c.GetDailyChart(context.Background())
	assert.ErrorIs(t, err, domain.ErrServer)
	assert.Contains(t, err.Error(), "sin datos")
}

func TestSinSesion_EnviaSinAuthorization(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard/warehouse-stats", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"first_stock":1}`))
	})
	c, tokens := newTestClient(t, mux)
	tokens.token = ""

	stats, err := c.GetWarehouseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.FirstStock)
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "secreto" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "credenciales inválidas"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"token":   "jwt-abc",
			"user":    map[string]interface{}{"id_user": 4, "username": in["username"], "position": "OPERATOR", "permissions": []string{"dashboard"}},
		})
	})
	c, tokens := newTestClient(t, mux)
	ctx := context.Background()

	tok, user, err := c.Login(ctx, "op1", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", tok)
	assert.Equal(t, int64(4), user.ID)
	assert.Equal(t, []string{"dashboard"}, user.Permissions)

	_, _, err = c.Login(ctx, "op1", "mala")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, tokens.invalidated, "un login fallido no toca la sesión actual")

	_, _, err = c.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
