// Command payoff-admin performs account maintenance directly on the store.
//
// Usage:
//
//	payoff-admin promote <username>
//	payoff-admin reset-password <username> <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"payoff/internal/auth"
	"payoff/internal/cli"
	"payoff/internal/log"
	"payoff/internal/storage"
)

const usage = `usage:
  payoff-admin promote <username>
  payoff-admin reset-password <username> <password>`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentAuth)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	store, closeStore := cli.InitStore(ctx, logger, cfg)

	err := run(ctx, auth.NewAuthenticator(store, auth.Hasher{}, nil), os.Args[1:])
	closeStore()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *auth.Authenticator, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	switch cmd := args[0]; {
	case cmd == "promote" && len(args) == 2:
		if err := a.Promote(ctx, args[1]); err != nil {
			return describe(err, args[1])
		}
		fmt.Printf("%s is now an admin\n", args[1])
	case cmd == "reset-password" && len(args) == 3:
		if err := a.ResetPassword(ctx, args[1], args[2]); err != nil {
			return describe(err, args[1])
		}
		fmt.Printf("password of %s updated\n", args[1])
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

func describe(err error, username string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("user %q not found", username)
	}
	return err
}
