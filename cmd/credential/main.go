package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"autopost/internal/adapter/repo"
	"autopost/internal/infra"
	"autopost/internal/infra/credentials"
)

// envKeys lists the environment variable consulted when -secret is empty.
var envKeys = map[string]string{
	credentials.ProviderStability: "STABILITY_KEY",
	credentials.ProviderOpenAI:    "OPENAI_API_KEY",
	credentials.ProviderGemini:    "GEMINI_API_KEY",
	credentials.ProviderInstagram: "INSTA_PAGE_ACCESS_TOKEN",
	credentials.ProviderThreads:   "THREADS_API_TOKEN",
}

type store interface {
	Set(ctx context.Context, provider, secret string, props map[string]any) error
	Delete(ctx context.Context, provider string) error
	List(ctx context.Context) ([]credentials.Entry, error)
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "credential").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := repo.EnsureSchema(ctx, runner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare schema: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, credentials.NewStore(runner), os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: credential set -provider NAME [-secret VALUE] | list | delete -provider NAME")
	fmt.Fprintf(w, "providers: %s\n", strings.Join(credentials.KnownProviders, ", "))
}

func run(ctx context.Context, s store, args []string, out io.Writer, getenv func(string) string) error {
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	provider := fs.String("provider", "", "provider name")
	secret := fs.String("secret", "", "secret value (falls back to the provider's environment variable)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	name := strings.ToLower(strings.TrimSpace(*provider))

	switch cmd {
	case "set":
		if !credentials.IsKnownProvider(name) {
			return fmt.Errorf("unsupported provider %q", *provider)
		}
		value := strings.TrimSpace(*secret)
		if value == "" {
			value = strings.TrimSpace(getenv(envKeys[name]))
		}
		if value == "" {
			return fmt.Errorf("%s secret is required via -secret or %s", name, envKeys[name])
		}
		if err := s.Set(ctx, name, value, map[string]any{"source": "cli"}); err != nil {
			return fmt.Errorf("failed to persist %s secret: %w", name, err)
		}
		fmt.Fprintf(out, "%s secret stored\n", name)
	case "delete":
		if !credentials.IsKnownProvider(name) {
			return fmt.Errorf("unsupported provider %q", *provider)
		}
		if err := s.Delete(ctx, name); err != nil {
			return fmt.Errorf("failed to delete %s secret: %w", name, err)
		}
		fmt.Fprintf(out, "%s secret deleted\n", name)
	case "list":
		entries, err := s.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Provider, e.UpdatedAt.Format(time.RFC3339))
		}
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
