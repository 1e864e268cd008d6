// Command issue-token mints a bearer token for the chat endpoint's auth gate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/auth"
)

func main() {
	subject := flag.String("subject", "", "Token subject, e.g. the storefront client name (required)")
	roles := flag.String("roles", "chat", "Comma-separated roles")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	secret := flag.String("secret", "", "Signing secret (defaults to AUTH_JWT_SECRET, then JWT_SECRET)")
	flag.Parse()

	if strings.TrimSpace(*subject) == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *ttl <= 0 {
		log.Fatalf("Validation error: ttl must be positive")
	}

	key := *secret
	if key == "" {
		key = os.Getenv("AUTH_JWT_SECRET")
	}
	if key == "" {
		key = os.Getenv("JWT_SECRET")
	}

	tm, err := auth.NewTokenManager(key)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v (set JWT_SECRET or pass -secret)", err)
	}

	token, err := tm.GenerateToken(context.Background(), *subject, splitRoles(*roles), *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	log.Printf("✓ Issued token for %q, expires %s", *subject, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(token)
}

func splitRoles(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
