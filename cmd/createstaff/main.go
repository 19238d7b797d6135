// Command createstaff adds a verified staff account to the database. The
// password is always read from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cms/internal/server/staff"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createstaff", flag.ContinueOnError)
	dsn := fs.String("d", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN")
	email := fs.String("email", "", "staff email")
	username := fs.String("username", "", "staff username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("a database DSN is required (-d or DATABASE_DSN)")
	}

	reader := bufio.NewReader(os.Stdin)
	var err error
	if *email == "" {
		if *email, err = staff.Prompt(reader, "Email", os.Stdout); err != nil {
			return err
		}
	}
	if *username == "" {
		if *username, err = staff.Prompt(reader, "Username", os.Stdout); err != nil {
			return err
		}
	}
	password, err := staff.PromptPassword(os.Stdout)
	if err != nil {
		return err
	}

	db, err := repomanager.OpenPostgres(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	user, err := staff.Create(ctx, rm.Users(db), staff.Input{Email: *email, Username: *username, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("Staff account %s created (id %s)\n", user.Email, user.ID)
	return nil
}
