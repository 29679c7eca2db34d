// Command sweep runs one pass of the pending account deletion sweep and
// prints the report. Per-account failures are part of the report, so the
// exit status is always zero.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"appstore.backend/internal/config"
	"appstore.backend/internal/domain/entities"
	"appstore.backend/internal/infrastructure/datasources/postgres"
	"appstore.backend/internal/infrastructure/mail"
	"appstore.backend/internal/infrastructure/queue"
	"appstore.backend/internal/infrastructure/repositories"
	"appstore.backend/internal/usecases"
	"appstore.backend/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sweeper interface {
	Sweep(ctx context.Context, now time.Time, dryRun bool) (*entities.SweepReport, error)
}

var (
	loadDotenv    = godotenv.Load
	loadCfg       = config.Load
	initLog       = logger.Init
	openDB        = postgres.NewConnection
	newMailSender = queue.NewMailSender
	now           = func() time.Time { return time.Now().UTC() }
	exit          = os.Exit

	buildSweeper = func(cfg *config.Config, db *gorm.DB, limit int) (sweeper, func(), error) {
		sender, closer, err := newMailSender(cfg.Mail, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		mailer, err := mail.NewAccountMailer(sender, cfg.Mail.SubjectPrefix, cfg.Mail.SiteName)
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		uc := usecases.NewDeletionSweepUsecase(
			repositories.NewAccountRepository(db),
			repositories.NewUnitOfWork(db),
			mailer,
			cfg.Sweeper.BatchSize,
		)
		uc.SetLimit(limit)
		return uc, func() { _ = closer.Close() }, nil
	}
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dryRun := fs.Bool("dry-run", false, "report accounts that would be deleted without changing anything")
	limit := fs.Int("limit", 0, "maximum accounts to process (0 = no limit)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		// flag has already printed the error and usage
		return 0
	}

	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := loadCfg()
	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", zap.Error(err))
		fmt.Fprintf(stderr, "sweep: %v\n", err)
		return 0
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	uc, cleanup, err := buildSweeper(cfg, db, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "sweep: %v\n", err)
		return 0
	}
	defer cleanup()

	report, err := uc.Sweep(ctx, now(), *dryRun)
	if err != nil {
		fmt.Fprintf(stderr, "sweep: %v\n", err)
		return 0
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return 0
	}
	printReport(stdout, report)
	return 0
}

func printReport(w io.Writer, report *entities.SweepReport) {
	mode := "sweep"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "%s at %s: %d candidate(s)\n", mode, report.Now.Format(time.RFC3339), len(report.Accounts))
	for _, a := range report.Accounts {
		line := fmt.Sprintf("  %-12s %s <%s> scheduled %s", a.Outcome, a.Username, a.Email, a.ScheduledAt.Format(time.RFC3339))
		if a.Error != "" {
			line += " error: " + a.Error
		}
		fmt.Fprintln(w, line)
	}
	if !report.DryRun {
		fmt.Fprintf(w, "deleted=%d skipped=%d failed=%d\n", report.Deleted, report.Skipped, report.Failed)
	}
}
