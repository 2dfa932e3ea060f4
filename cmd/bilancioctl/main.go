// Command bilancioctl administers a bilancio database from the shell.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

const amqpDialTimeout = 10 * time.Second

// Globals are shared by every command.
type Globals struct {
	DB       string `name:"db" env:"SQLITE_DB_PATH" default:"./data/bilancio.db" help:"Path of the SQLite database."`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level (${enum})."`

	AMQPURL      string `name:"amqp-url" env:"AMQP_URL" help:"Broker URL; when set, changes are published for the export worker."`
	AMQPExchange string `name:"amqp-exchange" env:"AMQP_EXCHANGE" default:"bilancio" help:"Exchange for change events."`
	AMQPQueue    string `name:"amqp-queue" env:"AMQP_QUEUE" default:"period_changed" help:"Queue bound to the exchange."`
}

var app struct {
	Globals

	Migrate    migrateCmd    `cmd:"" help:"Apply pending database migrations."`
	Categories categoriesCmd `cmd:"" help:"Manage categories."`
	Income     incomeCmd     `cmd:"" help:"Manage monthly income."`
	Summary    summaryCmd    `cmd:"" help:"Print the summary of a month."`
	Export     exportCmd     `cmd:"" help:"Write summaries to the configured export target."`
}

// runtime is what commands receive from main.
type runtime struct {
	ctx    context.Context
	logger *log.Logger
	out    io.Writer
	repo   *storage.SQLiteRepository
	svc    *services.Services
	amqp   *amqp.Client
}

func (g Globals) open(ctx context.Context, out io.Writer) (*runtime, error) {
	cfg := &config.Config{
		LogLevel:     g.LogLevel,
		LogFormat:    "text",
		AMQPURL:      g.AMQPURL,
		AMQPExchange: g.AMQPExchange,
		AMQPQueue:    g.AMQPQueue,
	}
	logger := cli.SetupLogger(cfg, log.ComponentCLI)

	repo, err := storage.NewSQLiteRepository(g.DB)
	if err != nil {
		return nil, err
	}

	// Without a broker the worker only picks up CLI changes on its next resync.
	var notifiers []services.ChangeNotifier
	dialCtx, cancel := context.WithTimeout(ctx, amqpDialTimeout)
	client, err := cli.DialAMQP(dialCtx, logger, cfg)
	cancel()
	if err != nil {
		logger.Warn("AMQP unavailable, continuing without events",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
	}
	if client != nil {
		notifiers = append(notifiers, services.NewEventNotifier(client))
	}

	return &runtime{
		ctx:    ctx,
		logger: logger,
		out:    out,
		repo:   repo,
		svc:    services.New(repo, nil, notifiers...),
		amqp:   client,
	}, nil
}

func (rt *runtime) close() {
	if rt.amqp != nil {
		if err := rt.amqp.Close(); err != nil {
			rt.logger.Warn("AMQP close error", log.FieldError, err.Error())
		}
	}
	if err := rt.repo.Close(); err != nil {
		rt.logger.Warn("Database close error", log.FieldError, err.Error())
	}
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&app,
		kong.Name("bilancioctl"),
		kong.Description("Administration tool for the bilancio household budget."),
		kong.UsageOnError(),
	)

	rt, err := app.Globals.open(ctx, os.Stdout)
	kctx.FatalIfErrorf(err)
	defer rt.close()

	kctx.FatalIfErrorf(kctx.Run(rt))
}
