// Command seed fills a running customer API with generated customers and,
// optionally, favorite products looked up through the API's catalog.
//
//	go run ./cmd/seed -url http://localhost:8080 -count 100 -products 1bf0f365-fbdd-4e21-9786-da459d78dd1f
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/pkg/httpclient"
	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

func main() {
	baseURL := flag.String("url", envOr("CUSTOMER_API_URL", "http://localhost:8080"), "customer API base URL")
	count := flag.Int("count", 50, "number of customers to create")
	emailDomain := flag.String("domain", "seed.example.com", "email domain for generated customers")
	products := flag.String("products", "", "comma-separated catalog product IDs to favorite")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.New("customer-seed", *logLevel)

	if err := checkDomain(*emailDomain); err != nil {
		log.Error("invalid seed options", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 2
	cfg.UserAgent = "customer-seed"

	s := &seeder{
		baseURL: strings.TrimRight(*baseURL, "/"),
		client:  httpclient.New(cfg),
		logger:  log,
	}

	start := time.Now()
	st, err := s.Run(ctx, *count, *emailDomain, splitIDs(*products))
	log.Info("seeding finished",
		slog.Int("created", st.Created),
		slog.Int("existing", st.Existing),
		slog.Int("favorites", st.Favorites),
		slog.Int("failed", st.Failed),
		slog.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		log.Error("seeding interrupted", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if st.Failed > 0 {
		os.Exit(2)
	}
}

// checkDomain rejects domains the API would refuse, so a bad flag fails fast
// instead of counting every customer as existing.
func checkDomain(d string) error {
	email, name := seedCustomer(0, d)
	if !domain.IsValid(&domain.Customer{Email: email, Name: name}) {
		return fmt.Errorf("email domain %q is not accepted by the customer API", d)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
