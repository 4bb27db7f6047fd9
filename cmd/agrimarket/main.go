package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agritech/agrimarket/config"
	"github.com/agritech/agrimarket/internal/account"
	"github.com/agritech/agrimarket/internal/app"
	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/payment"
	"github.com/agritech/agrimarket/internal/storefront"
	"github.com/agritech/agrimarket/internal/webserver"
	"github.com/agritech/agrimarket/web"
)

// Variable passed in at compile time using `-ldflags`
var (
	Version   string // -X main.Version=$(git describe --tags --abbrev=0)
	BuildDate string // -X main.BuildDate=$(date -u +%Y%m%d%H%M%S)
)

func main() {
	cliApp := &cli.App{
		Name:     "agrimarket",
		Compiled: time.Now(),
		Usage:    "Farmer to buyer produce marketplace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "agrimarket.yml", EnvVars: []string{"AGRIMARKET_CONFIG"}, Usage: "Path to the YAML config file"},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print version and build info",
				Action: func(c *cli.Context) error {
					fmt.Printf("Version=%s\nBuildDate=%s\n", Version, BuildDate)
					return nil
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the web server and background jobs",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Create or update the database schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "trace", Usage: "Print migration SQL"},
					&cli.BoolFlag{Name: "reset", Usage: "Drop every table first"},
				},
				Action: migrate,
			},
			{
				Name:  "import",
				Usage: "Bulk import products from a CSV file (name,category,price,is_organic,description)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "CSV file to import"},
					&cli.Int64Flag{Name: "farmer", Usage: "Owner user id for the imported products"},
				},
				Action: importProducts,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*app.Application, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, err
	}
	return application, nil
}

func serve(c *cli.Context) error {
	application, err := setup(c)
	if err != nil {
		return err
	}
	defer application.Release()
	cfg := application.Config()

	catalogSvc := catalog.NewService(application.Products(), application.Images())
	handlers := storefront.NewHandlers(
		catalogSvc,
		account.NewService(application.DB()),
		payment.NewService(application.DB(), application.Products()),
	)

	srv, err := webserver.NewServer(cfg, web.Templates())
	if err != nil {
		return err
	}
	handlers.Register(srv)
	if _, err := srv.Listen(); err != nil {
		return err
	}

	if err := application.StartJobs(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Info("shutting down")
		return nil
	})
	return g.Wait()
}

func migrate(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	cfg.System.Seed = false
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return err
	}
	defer application.Release()

	if c.Bool("reset") {
		application.InitDb()
		return nil
	}
	return application.MigrateDB(c.Bool("trace"))
}

func importProducts(c *cli.Context) error {
	application, err := setup(c)
	if err != nil {
		return err
	}
	defer application.Release()

	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	viewer := domain.Viewer{}
	if id := c.Int64("farmer"); id > 0 {
		farmer, err := account.NewService(application.DB()).Get(context.Background(), id)
		if err != nil {
			return err
		}
		if farmer.Role != domain.RoleFarmer {
			return fmt.Errorf("user %d is not a farmer", id)
		}
		viewer = domain.Viewer{UserID: farmer.ID, Name: farmer.Name, Role: farmer.Role}
	}

	res, err := catalog.NewService(application.Products(), application.Images()).Import(context.Background(), viewer, f)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d products, skipped %d rows\n", res.Created, res.Skipped)
	return nil
}
