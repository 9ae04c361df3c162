package enrollment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/almacen-escolar/internal/infrastructure/enrollment"
)

func TestHeadcount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/headcounts", r.URL.Path)
		assert.Equal(t, "grado 3", r.URL.Query().Get("group"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"group":"grado 3","count":50}`))
	}))
	defer srv.Close()

	p := enrollment.NewHTTPProvider(srv.URL, time.Second)
	count, err := p.Headcount(context.Background(), "grado 3")
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestHeadcountUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := enrollment.NewHTTPProvider(srv.URL, time.Second)
	_, err := p.Headcount(context.Background(), "grado-3")
	assert.Error(t, err)
}

func TestHeadcountContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	p := enrollment.NewHTTPProvider(srv.URL, time.Second)
	_, err := p.Headcount(ctx, "grado-3")
	assert.Error(t, err)
}
