package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rodrigo-augusto/customer-api/pkg/httpclient"
)

var (
	firstNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Fabio", "Gabriela", "Heitor", "Isabela", "Joao"}
	lastNames  = []string{"Silva", "Souza", "Oliveira", "Pereira", "Costa", "Almeida", "Ferreira", "Rodrigues"}
)

// seedCustomer returns the i-th generated customer. Output is deterministic so
// reruns hit the same emails.
func seedCustomer(i int, domain string) (email, name string) {
	first := firstNames[i%len(firstNames)]
	last := lastNames[(i/len(firstNames))%len(lastNames)]
	email = fmt.Sprintf("%s.%s.%04d@%s", strings.ToLower(first), strings.ToLower(last), i, domain)
	return email, first + " " + last
}

// stats counts seeding outcomes.
type stats struct {
	Created   int
	Existing  int
	Favorites int
	Failed    int
}

// seeder drives a running customer API over HTTP.
type seeder struct {
	baseURL string
	client  httpclient.Doer
	logger  *slog.Logger
}

func (s *seeder) send(ctx context.Context, method, path string, body any) (int, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Run creates count customers and gives each one the listed favorites. A
// customer that already exists counts as Existing and still receives its
// favorites. It stops early only when ctx is done.
func (s *seeder) Run(ctx context.Context, count int, emailDomain string, productIDs []string) (stats, error) {
	var st stats
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		email, name := seedCustomer(i, emailDomain)
		status, err := s.send(ctx, http.MethodPost, "/api/v1/customers", map[string]string{"email": email, "name": name})
		switch {
		case err != nil:
			st.Failed++
			s.logger.WarnContext(ctx, "create customer failed", slog.String("email", email), slog.String("error", err.Error()))
			continue
		case status == http.StatusOK:
			st.Created++
		case status == http.StatusConflict:
			st.Existing++
		default:
			st.Failed++
			s.logger.WarnContext(ctx, "create customer rejected", slog.String("email", email), slog.Int("status", status))
			continue
		}

		for _, id := range productIDs {
			path := "/api/v1/customers/" + url.PathEscape(email) + "/products/" + url.PathEscape(id)
			status, err := s.send(ctx, http.MethodPut, path, nil)
			if err != nil || (status != http.StatusOK && status != http.StatusConflict) {
				st.Failed++
				s.logger.WarnContext(ctx, "add favorite failed",
					slog.String("email", email),
					slog.String("product_id", id),
					slog.Int("status", status),
				)
				continue
			}
			if status == http.StatusOK {
				st.Favorites++
			}
		}
	}
	return st, nil
}
