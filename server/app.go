package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"annadan/config"
	"annadan/internal/auth"
	"annadan/internal/db"
	"annadan/internal/health"
	"annadan/internal/ledger"
	"annadan/internal/logs"
	"annadan/internal/mailer"
	"annadan/internal/middleware"
	"annadan/internal/models"
	"annadan/internal/repo"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB (опционально; пустой driver — in-memory режим) */
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d

		if err := a.db.AutoMigrate(
			&models.User{},
			&models.OTPRecord{},
			&models.Donation{},
			&models.Distribution{}); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
	}

	/* 3) Почта — обязательна, конфиг уже провалидирован */
	mail := mailer.New(
		a.cfg.SMTP.Host, a.cfg.SMTP.Port,
		a.cfg.SMTP.Username, a.cfg.SMTP.Password,
		a.cfg.SMTP.From, 10*time.Second)

	/* 4) Хранилища: GORM при наличии БД, иначе память */
	var (
		users     auth.Users
		otps      auth.OTPs
		ledgerSto ledger.Store
	)
	if a.db != nil {
		users = repo.NewUserStore(a.db)
		otps = repo.NewOTPStore(a.db)
		ledgerSto = repo.NewLedgerStore(a.db)
	} else {
		mem := ledger.NewMemStore()
		users = auth.NewMemUsers(mem.PurgeUser)
		otps = auth.NewMemOTPs()
		ledgerSto = mem
	}

	/* 5) Сервисы */
	sessions := auth.NewSessionRegistry(auth.OTPTTL, 12*time.Hour)
	if len(a.cfg.Auth.AdminEmails) == 0 {
		logs.Logger.Warn("auth.admin_emails is empty: admin signup is disabled")
	}
	authSvc := auth.New(users, otps, sessions, mail, a.cfg.Auth.AdminEmails)
	ledgerSvc := ledger.New(ledgerSto)

	/* 6) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 7) Health */
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /healthz, /readyz
	} else {
		health.RegisterRoutes(a.Router) // только /healthz
	}

	/* 8) API */
	auth.RegisterRoutes(a.Router, auth.NewHandler(authSvc), sessions)
	ledger.RegisterRoutes(a.Router, ledger.NewHandler(ledgerSvc), sessions)

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Жёсткие таймауты — это важно для production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
