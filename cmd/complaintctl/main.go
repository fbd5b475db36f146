// Command complaintctl provisions admins and the verified student roster.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/repository"
	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/pkg/config"
	"github.com/noah-isme/student-complaints/pkg/database"
	"github.com/noah-isme/student-complaints/pkg/logger"
)

const usage = `Usage: complaintctl <command> [flags]

Commands:
  init-db                                   create the tables if missing
  create-admin -id <admin_id> -password <pw> create or reset an admin
  import-students -file <roster.csv>        upsert students (header: register_number,department,year)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr, os.Args[1], os.Args[2:]); err != nil {
		logr.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logr *zap.Logger, command string, args []string) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bootstrapper := service.NewBootstrapper(repository.NewSchemaRepository(db), logr, nil)
	if err := bootstrapper.Ensure(ctx); err != nil {
		return err
	}

	auth := service.NewAuthService(nil, nil, nil, nil, nil, logr, service.AuthConfig{})
	provisioning := service.NewProvisioningService(
		repository.NewAdminRepository(db),
		repository.NewStudentRepository(db),
		auth,
		logr,
	)

	switch command {
	case "init-db":
		fmt.Println("schema ready")
		return nil

	case "create-admin":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		adminID := fs.String("id", "", "admin login id")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)

		admin, err := provisioning.CreateAdmin(ctx, *adminID, *password)
		if err != nil {
			return err
		}
		fmt.Printf("admin %q ready (id %d)\n", admin.AdminID, admin.ID)
		return nil

	case "import-students":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		path := fs.String("file", "", "roster CSV path")
		_ = fs.Parse(args)
		if *path == "" {
			return fmt.Errorf("-file is required")
		}

		f, err := os.Open(*path)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := provisioning.ImportStudents(ctx, f)
		if err != nil {
			return err
		}
		for _, skipped := range result.Skipped {
			fmt.Println("skipped", skipped)
		}
		fmt.Printf("imported %d students\n", result.Imported)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
