package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finman/internal/amqp"
	"finman/internal/cli"
	"finman/internal/gateway"
	apphttp "finman/internal/http"
	"finman/internal/log"
	"finman/internal/services"
	"finman/internal/session"
	"finman/internal/viewmodel"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	sess := session.NewStore(repo)
	if err := sess.Load(ctx); err != nil {
		logger.Warn("Failed to load stored credential", log.FieldError, err)
	}

	gw := gateway.NewClient(cfg.BackendURL, cfg.RequestTimeout, sess)

	// One startup probe; a stale credential is cleared here rather than on
	// the first screen the user opens.
	sess.Validate(ctx, func(ctx context.Context) error {
		_, err := gw.CurrentUser(ctx)
		return err
	})

	var mq *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		mq, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, mutation events disabled", log.FieldError, err)
			mq = nil
		} else {
			defer mq.Close()
		}
	}

	ledger := services.NewLedgerService(gw, mq)

	srv := apphttp.NewServer(":"+cfg.Port, sess, apphttp.Screens{
		Auth:      viewmodel.NewAuth(gw, sess),
		List:      viewmodel.NewTransactionList(ledger),
		Form:      viewmodel.NewTransactionForm(ledger),
		Budgets:   viewmodel.NewBudgetManager(gw),
		Chart:     viewmodel.NewExpenseChart(gw),
		Dashboard: viewmodel.NewDashboard(repo),
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting finman shell", "port", cfg.Port, "backend", cfg.BackendURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
