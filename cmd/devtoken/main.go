// Command devtoken issues a bearer token for a user so the API can be
// exercised locally without a login flow.
package main

import (
	"fmt"
	"os"
	"time"

	"boardflow/internal/auth"
	"boardflow/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()

	var (
		userID string
		ttl    time.Duration
	)
	flagSet := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	flagSet.StringVar(&userID, "user", "", "user id to embed in the token (required)")
	flagSet.DurationVar(&ttl, "ttl", time.Duration(cfg.JWTExpiryHours)*time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("--user must be a uuid: %w", err)
	}

	token, err := auth.GenerateToken([]byte(cfg.JWTSecret), userID, ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Println(token)
	return nil
}
