package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/nightout/internal/adapters/repository/postgres"
)

// Usage: migrations [name]. Without a name every up migration runs;
// otherwise the file ending in name + ".sql", e.g. "create_photos.down".
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if len(os.Args) < 2 {
		if err := postgres.ApplyMigrations(ctx, db); err != nil {
			log.Fatal(err)
		}
		fmt.Println("All migrations executed successfully.")
		return
	}

	if err := postgres.ApplyMigration(ctx, db, os.Args[1]); err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}
	fmt.Println("Migration file executed successfully.")
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return postgres.ConnString(host, port, user, password, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
