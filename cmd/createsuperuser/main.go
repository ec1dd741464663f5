// Command createsuperuser creates an operator account with staff and
// superuser privileges, or elevates an existing account with -elevate.
//
// The password is prompted for without echo when stdin is a terminal and
// read from the first two lines of stdin otherwise.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/techbyhenry/acode-api/internal/config"
	"github.com/techbyhenry/acode-api/internal/domain"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/platform/postgres"
	"github.com/techbyhenry/acode-api/internal/redact"
	"github.com/techbyhenry/acode-api/internal/service/auth"
	"github.com/techbyhenry/acode-api/internal/store"
	"golang.org/x/term"
)

// superuserCredentials is the part of auth.Credentials this command uses.
type superuserCredentials interface {
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)
	Elevate(ctx context.Context, email string) (*domain.User, error)
}

func main() {
	email := flag.String("email", "", "email address of the account")
	elevate := flag.Bool("elevate", false, "grant staff and superuser privileges to an existing account")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *email, *elevate, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email string, elevate bool, in *os.File, out io.Writer) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel, Output: os.Stderr})
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %s", redact.Error(err))
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %s", redact.Error(err))
	}

	creds := auth.NewCredentials(
		postgres.NewPostgresUserStore(db, log),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewPasswordPolicy(cfg.Auth.PasswordMinLength),
		log,
		auth.WithTransactions(db),
	)

	if elevate {
		return elevateUser(ctx, creds, email, out)
	}

	password, confirm, err := readPasswords(in, out)
	if err != nil {
		return err
	}
	return createSuperuser(ctx, creds, email, password, confirm, out)
}

func createSuperuser(ctx context.Context, creds superuserCredentials, email, password, confirm string, out io.Writer) error {
	if password != confirm {
		return errors.New("passwords didn't match")
	}

	user, err := creds.CreateSuperuser(ctx, email, password)
	if err != nil {
		if store.IsDuplicateError(err) {
			return fmt.Errorf("an account with email %s already exists; use -elevate to promote it", domain.NormalizeEmail(email))
		}
		if fields := domain.FieldErrors(err); fields != nil {
			return errors.New(formatFieldErrors(fields))
		}
		return fmt.Errorf("failed to create superuser: %s", redact.Error(err))
	}

	fmt.Fprintf(out, "Superuser %s created.\n", user.Email)
	return nil
}

func elevateUser(ctx context.Context, creds superuserCredentials, email string, out io.Writer) error {
	user, err := creds.Elevate(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("no account with email %s", domain.NormalizeEmail(email))
		}
		return fmt.Errorf("failed to elevate account: %s", redact.Error(err))
	}

	fmt.Fprintf(out, "%s is now a superuser.\n", user.Email)
	return nil
}

// readPasswords prompts twice without echo on a terminal and otherwise
// reads two lines from in.
func readPasswords(in *os.File, out io.Writer) (string, string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(out, "Password: ")
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprint(out, "Password (again): ")
		confirm, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), string(confirm), nil
	}
	return readPasswordLines(in)
}

func readPasswordLines(r io.Reader) (string, string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for len(lines) < 2 && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(lines) < 2 {
		return "", "", errors.New("expected the password and its confirmation on two lines of stdin")
	}
	return lines[0], lines[1], nil
}

func formatFieldErrors(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", name, strings.Join(fields[name], " "))
	}
	return b.String()
}
