package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-augusto/customer-api/internal/catalog"
	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/internal/event"
	handler "github.com/rodrigo-augusto/customer-api/internal/handler/http"
	"github.com/rodrigo-augusto/customer-api/internal/repository/memory"
	"github.com/rodrigo-augusto/customer-api/internal/service"
	"github.com/rodrigo-augusto/customer-api/pkg/health"
	"github.com/rodrigo-augusto/customer-api/pkg/httpclient"
	"github.com/rodrigo-augusto/customer-api/pkg/middleware"
)

type fixedCatalog map[string]domain.Product

func (c fixedCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func newSeeder(t *testing.T) (*seeder, *memory.CustomerRepository) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewCustomerRepository()
	cat := fixedCatalog{"p-1": {ID: "p-1", Title: "Widget", Price: 9.99}}

	svc := service.NewCustomerService(repo, cat, event.NewProducer(nil, log), log)
	srv := httptest.NewServer(handler.NewRouter(svc, health.NewHandler(), log, middleware.DefaultCORSConfig()))
	t.Cleanup(srv.Close)

	return &seeder{baseURL: srv.URL, client: httpclient.New(httpclient.DefaultConfig()), logger: log}, repo
}

func TestSeedCustomer_Deterministic(t *testing.T) {
	email, name := seedCustomer(0, "seed.example.com")
	assert.Equal(t, "ana.silva.0000@seed.example.com", email)
	assert.Equal(t, "Ana Silva", name)

	again, _ := seedCustomer(0, "seed.example.com")
	assert.Equal(t, email, again)

	other, _ := seedCustomer(11, "seed.example.com")
	assert.Equal(t, "bruno.souza.0011@seed.example.com", other)
}

func TestSeeder_Run(t *testing.T) {
	s, repo := newSeeder(t)

	st, err := s.Run(context.Background(), 3, "seed.example.com", []string{"p-1"})
	require.NoError(t, err)
	assert.Equal(t, stats{Created: 3, Favorites: 3}, st)

	customers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 3)
	for _, c := range customers {
		assert.True(t, c.HasFavorite("p-1"), c.Email)
	}
}

func TestSeeder_Rerun(t *testing.T) {
	s, _ := newSeeder(t)

	_, err := s.Run(context.Background(), 2, "seed.example.com", []string{"p-1"})
	require.NoError(t, err)

	st, err := s.Run(context.Background(), 2, "seed.example.com", []string{"p-1"})
	require.NoError(t, err)
	assert.Equal(t, stats{Existing: 2}, st)
}

func TestSeeder_UnknownProductCountsAsFailure(t *testing.T) {
	s, _ := newSeeder(t)

	st, err := s.Run(context.Background(), 1, "seed.example.com", []string{"missing"})
	require.NoError(t, err)
	assert.Equal(t, stats{Created: 1, Failed: 1}, st)
}

func TestSeeder_StopsOnCanceledContext(t *testing.T) {
	s, _ := newSeeder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := s.Run(ctx, 5, "seed.example.com", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.Created)
}

func TestSeeder_UnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s := &seeder{
		baseURL: srv.URL,
		client:  httpclient.New(httpclient.DefaultConfig()),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	st, err := s.Run(context.Background(), 2, "seed.example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Failed)
}

func TestSplitIDs(t *testing.T) {
	assert.Nil(t, splitIDs(""))
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b ,"))
	assert.Equal(t, "x", strings.Join(splitIDs("x"), ","))
}

func TestCheckDomain(t *testing.T) {
	tests := []struct {
		domain  string
		wantErr bool
	}{
		{domain: "seed.example.com"},
		{domain: "example.NET"},
		{domain: "example.org", wantErr: true},
		{domain: "localhost", wantErr: true},
		{domain: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			err := checkDomain(tt.domain)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
