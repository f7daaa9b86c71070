package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"
	"github.com/ABEL-1010/Inventory-Management-System/internal/database"
	"github.com/ABEL-1010/Inventory-Management-System/internal/logger"
	"github.com/ABEL-1010/Inventory-Management-System/internal/router"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "ims",
		Usage: "inventory and point-of-sale API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				EnvVars: []string{"IMS_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "setup-admin",
				Usage: "create the initial admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "admin display name"},
					&cli.StringFlag{Name: "email", Usage: "admin email"},
					&cli.StringFlag{Name: "password", Usage: "admin password", EnvVars: []string{"IMS_ADMIN_PASSWORD"}},
				},
				Action: setupAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads config, sets up logging and opens a migrated database.
func bootstrap(c *cli.Context) (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "load config")
	}

	logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "setup logger")
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		logCloser.Close()
		return nil, nil, nil, errors.Wrap(err, "init database")
	}

	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		logCloser.Close()
		return nil, nil, nil, errors.Wrap(err, "migrate database")
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("close database")
		}
		logCloser.Close()
	}
	return cfg, db, cleanup, nil
}

func serve(c *cli.Context) error {
	cfg, db, cleanup, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      router.SetupRouter(cfg, db),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "run server")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func migrate(c *cli.Context) error {
	_, _, cleanup, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer cleanup()
	log.Info("database schema up to date")
	return nil
}

func setupAdmin(c *cli.Context) error {
	cfg, db, cleanup, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer cleanup()

	admin := cfg.Admin
	if v := c.String("name"); v != "" {
		admin.Name = v
	}
	if v := c.String("email"); v != "" {
		admin.Email = v
	}
	if v := c.String("password"); v != "" {
		admin.Password = v
	}

	user, err := database.SeedAdmin(db, admin, cfg.Security.BcryptCost)
	if errors.Is(err, database.ErrAdminExists) {
		log.Info("admin user already exists")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "create admin")
	}
	log.WithFields(log.Fields{"id": user.ID, "email": user.Email}).Info("admin user created")
	return nil
}
