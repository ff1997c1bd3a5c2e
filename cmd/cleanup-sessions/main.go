// Command cleanup-sessions deletes expired session rows.
//
// Usage:
//
//	cleanup-sessions
//
// Requires DATABASE_DSN environment variable to be set. Only useful with
// the postgres session backend; cookie sessions expire in the browser.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at < now()")
	if err != nil {
		log.Fatalf("cleanup sessions: %v", err)
	}

	fmt.Printf("Deleted %d expired sessions.\n", tag.RowsAffected())
}
