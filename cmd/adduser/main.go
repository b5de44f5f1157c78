package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/vanshika/paymybuddy/backend/internal/auth"
	"github.com/vanshika/paymybuddy/backend/internal/config"
	"github.com/vanshika/paymybuddy/backend/internal/logging"
	"github.com/vanshika/paymybuddy/backend/internal/repository"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

var errPasswordMismatch = errors.New("passwords do not match")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
}

// run registers one account. The password is read from the terminal without
// echo, or from the first line of stdin when it is not a terminal.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		email    = fs.String("email", "", "email address of the new user")
		username = fs.String("username", "", "display name of the new user")
		driver   = fs.String("db-driver", cfg.Database.Driver, "database driver (sqlite|postgres)")
		dsn      = fs.String("db-dsn", cfg.Database.DSN, "database DSN")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *username == "" {
		fs.Usage()
		return errors.New("-email and -username are required")
	}

	password, err := readPassword(stdin, stdout)
	if err != nil {
		return err
	}

	logger := logging.NewWithWriter(stderr, cfg.Logging).With("component", "adduser")
	dbCfg := cfg.Database
	dbCfg.Driver, dbCfg.DSN = *driver, *dsn
	db, err := repository.Open(dbCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			logger.Warn("closing database failed", "error", err)
		}
	}()

	users := service.NewUserService(repository.NewUserRepository(db), auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	user, err := users.Register(ctx, service.RegisterInput{
		Email:    *email,
		Username: *username,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "created user %s (%s)\n", user.Email, user.ID)
	return nil
}

func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		first, err := promptSecret(f, out, "Password: ")
		if err != nil {
			return "", err
		}
		second, err := promptSecret(f, out, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if first != second {
			return "", errPasswordMismatch
		}
		return first, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptSecret(f *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
