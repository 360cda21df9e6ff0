package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pesovault/ledger-backend/internal/adapter/repository/postgres"
	"github.com/pesovault/ledger-backend/internal/domain"
	"github.com/pesovault/ledger-backend/internal/usecase/audit"
)

func main() {
	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost" // Default for local run without docker
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "ledger"
		}

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// 2. Initialize Repositories (Postgres)
	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	// 3. Run reconciliation
	reconciler := audit.NewReconciler(accountRepo, ledgerRepo)
	drifts, err := reconciler.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Failed to reconcile: %v", err)
	}

	if len(drifts) == 0 {
		log.Println("All account balances match their ledger history")
		return
	}

	for _, d := range drifts {
		log.Printf("Drift on account %s: live=%s replayed=%s difference=%s",
			d.AccountNumber,
			domain.AmountToDecimal(d.Live),
			domain.AmountToDecimal(d.Replayed),
			d.Difference(),
		)
	}
	log.Fatalf("Found %d account(s) out of balance", len(drifts))
}
