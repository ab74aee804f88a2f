// Command tokengen issues a signed bearer token for a principal, using the
// same signing key the server reads from the environment. Intended for local
// development and operational access.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"patrolfund/internal/identity"
	"patrolfund/internal/platform/config"
	id "patrolfund/pkg/domain"
)

func main() {
	principal := flag.String("principal", "", "principal the token identifies")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	caller, err := id.ParsePrincipal(*principal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid principal: %v\n", err)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	token, err := identity.NewJWTService(cfg.JWTSigningKey).IssueToken(caller, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
