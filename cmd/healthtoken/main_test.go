package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/auth"
	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/repository"
)

var createOutput = regexp.MustCompile(`id:\s+(\S+)\ntoken: (\S+)\n`)

func TestRun_CreateListRevoke(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockTokenRepository()

	var out bytes.Buffer
	if err := run(ctx, repo, "create", []string{"-name", "deploy-bot", "-ttl", "1h"}, &out); err != nil {
		t.Fatalf("create: %v", err)
	}
	match := createOutput.FindStringSubmatch(out.String())
	if match == nil {
		t.Fatalf("unexpected create output %q", out.String())
	}
	id, secret := match[1], match[2]

	// the printed secret must authorize through the repository filter
	f := auth.NewRepositoryFilter(repo, zap.NewNop())
	req := httptest.NewRequest(http.MethodPut, "/status", nil)
	req.Header.Set("Authorization", "Bearer "+secret)
	if ok, err := f.Authorize(ctx, req); !ok || err != nil {
		t.Fatalf("expected new token to authorize, got ok=%v err=%v", ok, err)
	}

	out.Reset()
	if err := run(ctx, repo, "list", nil, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "deploy-bot") || !strings.Contains(out.String(), "active") {
		t.Fatalf("unexpected list output %q", out.String())
	}

	out.Reset()
	if err := run(ctx, repo, "revoke", []string{"-id", id}, &out); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := f.Authorize(ctx, req); ok {
		t.Fatal("revoked token must not authorize")
	}

	out.Reset()
	_ = run(ctx, repo, "list", nil, &out)
	if !strings.Contains(out.String(), "revoked") {
		t.Fatalf("expected revoked state in %q", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockTokenRepository()
	var out bytes.Buffer

	if err := run(ctx, repo, "create", nil, &out); err == nil {
		t.Fatal("expected error without -name")
	}
	if err := run(ctx, repo, "revoke", []string{"-id", "missing"}, &out); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := run(ctx, repo, "rotate", nil, &out); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
