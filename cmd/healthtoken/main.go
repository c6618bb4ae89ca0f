// Command healthtoken manages the bearer tokens accepted for health updates
// when DB_TOKEN_AUTH is enabled.
//
//	healthtoken create -name deploy-bot [-ttl 720h]
//	healthtoken revoke -id <uuid>
//	healthtoken list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/auth"
	"github.com/ricirt/healthcheck/internal/config"
	"github.com/ricirt/healthcheck/internal/db"
	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/repository"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repo := repository.NewPgTokenRepository(pool)
	if err := run(ctx, repo, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: healthtoken create -name NAME [-ttl DURATION] | revoke -id ID | list")
}

func run(ctx context.Context, repo repository.TokenRepository, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		name := fs.String("name", "", "human readable token owner")
		ttl := fs.Duration("ttl", 0, "token lifetime; 0 means no expiry")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *name == "" {
			return fmt.Errorf("-name is required")
		}
		return create(ctx, repo, *name, *ttl, time.Now().UTC(), out)

	case "revoke":
		fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
		id := fs.String("id", "", "token id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := repo.Revoke(ctx, *id); err != nil {
			return fmt.Errorf("revoke %s: %w", *id, err)
		}
		fmt.Fprintf(out, "revoked %s\n", *id)
		return nil

	case "list":
		tokens, err := repo.List(ctx)
		if err != nil {
			return err
		}
		printTokens(out, tokens, time.Now())
		return nil

	default:
		usage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// create stores a new token and prints its secret. The secret is shown once;
// only its digest is persisted.
func create(ctx context.Context, repo repository.TokenRepository, name string, ttl time.Duration, now time.Time, out io.Writer) error {
	secret, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	t := &domain.Token{
		ID:        uuid.New().String(),
		Name:      name,
		TokenHash: auth.HashToken(secret),
		CreatedAt: now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		t.ExpiresAt = &exp
	}
	if err := repo.Create(ctx, t); err != nil {
		return err
	}
	fmt.Fprintf(out, "id:    %s\ntoken: %s\n", t.ID, secret)
	return nil
}

func printTokens(out io.Writer, tokens []*domain.Token, now time.Time) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE\tLAST USED")
	for _, t := range tokens {
		state := "active"
		switch {
		case t.RevokedAt != nil:
			state = "revoked"
		case !t.Active(now):
			state = "expired"
		}
		lastUsed := "-"
		if t.LastUsedAt != nil {
			lastUsed = t.LastUsedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, state, lastUsed)
	}
	_ = tw.Flush()
}
