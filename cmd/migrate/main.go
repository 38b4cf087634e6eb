// Command migrate manages the pousada schema.
//
//	migrate [up|down|reset|status|check|seed]
//
// Without a command it applies pending migrations.
package main

import (
	"context"
	stdLog "log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/config"
	"github.com/iliyamo/pousada-reservation/internal/database"
	"github.com/iliyamo/pousada-reservation/internal/logger"
	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/migrations"
)

// seedConfig describes the first admin account created by "seed".
type seedConfig struct {
	Name     string `envconfig:"ADMIN_NAME" default:"Administrador"`
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@recantomdolavio.com"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Cost     int    `envconfig:"BCRYPT_COST" default:"10"`
}

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	log, err := logger.New(os.Getenv("LOG_LEVEL"), "dev")
	if err != nil {
		stdLog.Fatal(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cmd, log.Named("migrate")); err != nil {
		log.Fatal("migrate failed", zap.String("command", cmd), zap.Error(err))
	}
}

func run(cmd string, log *zap.Logger) error {
	dbCfg, err := config.LoadDB()
	if err != nil {
		return err
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db, migrations.FS)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cmd {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
	case "down":
		if err := m.Down(); err != nil {
			return err
		}
	case "reset":
		if err := m.Reset(); err != nil {
			return err
		}
	case "status":
		return m.Status()
	case "check":
		tables, err := m.Check(ctx)
		for _, t := range tables {
			log.Info("table", zap.String("name", t.Table), zap.Int64("rows", t.Rows))
		}
		if err != nil {
			log.Warn("migration required")
			return err
		}
		log.Info("database is migrated")
		return nil
	case "seed":
		return seedAdmin(ctx, repository.NewUserRepo(db), log)
	default:
		return errors.Errorf("unknown command %q (want up, down, reset, status, check or seed)", cmd)
	}

	v, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("command", cmd), zap.Int64("version", v))
	return nil
}

func seedAdmin(ctx context.Context, users *repository.UserRepo, log *zap.Logger) error {
	var s seedConfig
	if err := envconfig.Process("", &s); err != nil {
		return errors.Wrap(err, "seed config")
	}
	if s.Password == "" {
		return errors.New("ADMIN_PASSWORD is required to seed the admin user")
	}
	id, err := users.Create(ctx, s.Name, s.Email, s.Password, model.RoleAdmin, s.Cost)
	if errors.Is(err, repository.ErrEmailExists) {
		log.Info("admin already exists", zap.String("email", s.Email))
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("admin created", zap.String("email", s.Email), zap.Uint64("id", id))
	return nil
}
