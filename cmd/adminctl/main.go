// Command adminctl lists admins, creates new ones and resets passwords
// against the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/admins"
	"github.com/collegenews/collegenews/backend/go-services/internal/config"
	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"golang.org/x/term"
)

func main() {
	var (
		list     = flag.Bool("list", false, "List all admins")
		create   = flag.Bool("create", false, "Create a new admin")
		reset    = flag.Bool("reset", false, "Reset an admin's password")
		username = flag.String("username", "", "Admin username (for -create and -reset)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer closeRepo()

	cmd := command{list: *list, create: *create, reset: *reset, username: *username}
	if err := cmd.run(ctx, admins.NewService(repo), promptPassword, os.Stdout); err != nil {
		closeRepo()
		log.Fatalf("Error: %v", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (admins.Repository, func(), error) {
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
		db, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return admins.NewSQLRepository(db), func() { _ = db.Close() }, nil
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		done := func() { _ = client.Disconnect(context.Background()) }
		repo, err := admins.NewMongoRepository(ctx, client.Database(cfg.MongoDB.Database))
		if err != nil {
			done()
			return nil, nil, err
		}
		return repo, done, nil
	}
	return nil, nil, fmt.Errorf("adminctl needs a persistent database, not %q", cfg.Database.Driver)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

type command struct {
	list, create, reset bool
	username            string
}

func (c command) run(ctx context.Context, svc *admins.Service, readPassword func(string) (string, error), out io.Writer) error {
	switch {
	case c.list:
		list, err := svc.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No admins found.")
			return nil
		}
		fmt.Fprintf(out, "%-6s %-24s %s\n", "ID", "USERNAME", "CREATED")
		for _, a := range list {
			fmt.Fprintf(out, "%-6d %-24s %s\n", a.ID, a.Username, a.CreatedAt.Format(time.RFC3339))
		}
		return nil
	case c.create, c.reset:
		if c.username == "" {
			return errors.New("-username is required")
		}
		password, err := readPassword("Enter password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}
		if c.create {
			a, err := svc.Create(ctx, c.username, password)
			if err != nil {
				if errors.Is(err, admins.ErrExists) {
					return fmt.Errorf("admin '%s' already exists", c.username)
				}
				return err
			}
			fmt.Fprintf(out, "Admin '%s' created (id %d).\n", a.Username, a.ID)
			return nil
		}
		if err := svc.SetPassword(ctx, c.username, password); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("admin '%s' not found", c.username)
			}
			return err
		}
		fmt.Fprintf(out, "Password for '%s' updated.\n", c.username)
		return nil
	}
	return errors.New("one of -list, -create or -reset is required")
}
