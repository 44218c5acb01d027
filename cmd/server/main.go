package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	http_adapter "github.com/JoeShih716/go-bank-core/internal/app/bank/adapter/in/http"
	memory_adapter "github.com/JoeShih716/go-bank-core/internal/app/bank/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-bank-core/internal/app/bank/adapter/out/mysql"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
	"github.com/JoeShih716/go-bank-core/pkg/mysql"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
	Ledger struct {
		// Backend: "memory" (扁平 JSON 檔) 或 "mysql"
		Backend string `yaml:"backend"`
		// Engine: memory backend 的序列化方式 "mutex" 或 "serial"
		Engine string `yaml:"engine"`
	} `yaml:"ledger"`
	MySQL mysql.Config `yaml:"mysql"`
}

func main() {
	// 1. 載入設定
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 初始化集合檔 (Users / Notifications 永遠走 JSON 檔)
	userFile, err := jsonstore.NewCollection[domain.User](cfg.Data.Dir, "users.json")
	if err != nil {
		log.Fatalf("Failed to init users store: %v", err)
	}
	noteFile, err := jsonstore.NewCollection[domain.Notification](cfg.Data.Dir, "notifications.json")
	if err != nil {
		log.Fatalf("Failed to init notifications store: %v", err)
	}

	users, err := memory_adapter.NewUserStore(userFile)
	if err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	notifier, err := memory_adapter.NewNotificationLog(noteFile)
	if err != nil {
		log.Fatalf("Failed to load notifications: %v", err)
	}

	// 3. 依設定選擇帳本後端
	var ledger usecase.Ledger
	var txlog usecase.TransactionLog

	switch cfg.Ledger.Backend {
	case "mysql":
		dbClient, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer dbClient.Close()
		log.Println("Connected to MySQL successfully")

		mysqlLedger := mysql_adapter.NewMySQLLedger(dbClient)
		if err := mysqlLedger.Migrate(); err != nil {
			log.Fatalf("Failed to migrate tables: %v", err)
		}
		ledger = mysqlLedger
		txlog = mysql_adapter.NewMySQLTransactionLog(dbClient)

	case "memory", "":
		accountFile, err := jsonstore.NewCollection[domain.Account](cfg.Data.Dir, "accounts.json")
		if err != nil {
			log.Fatalf("Failed to init accounts store: %v", err)
		}
		tranFile, err := jsonstore.NewCollection[domain.Transaction](cfg.Data.Dir, "transactions.json")
		if err != nil {
			log.Fatalf("Failed to init transactions store: %v", err)
		}

		switch cfg.Ledger.Engine {
		case "serial":
			serialLedger, err := memory_adapter.NewSerialLedger(accountFile)
			if err != nil {
				log.Fatalf("Failed to init SerialLedger: %v", err)
			}
			serialLedger.Start(ctx)
			ledger = serialLedger
		case "mutex", "":
			mutexLedger, err := memory_adapter.NewMutexLedger(accountFile)
			if err != nil {
				log.Fatalf("Failed to init MutexLedger: %v", err)
			}
			ledger = mutexLedger
		default:
			log.Fatalf("Invalid ledger engine: %q", cfg.Ledger.Engine)
		}

		memTxlog, err := memory_adapter.NewTransactionLog(tranFile)
		if err != nil {
			log.Fatalf("Failed to load transactions: %v", err)
		}
		txlog = memTxlog

	default:
		log.Fatalf("Invalid ledger backend: %q", cfg.Ledger.Backend)
	}

	// 4. 初始化 UseCase
	transfers := usecase.NewTransferUseCase(ledger, txlog, notifier, users)
	queries := usecase.NewQueryUseCase(ledger, txlog, notifier, users)
	userUC := usecase.NewUserUseCase(users, ledger)

	// 5. 初始化 HTTP Adapter (Driving Adapter) 並啟動
	server := http_adapter.NewServer(transfers, queries, userUC)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	cancel() // 停掉 serial ledger 的 run loop (會先把排隊中的異動處理完)
	log.Println("Server exited")
}

func loadConfig() Config {
	path := os.Getenv("BANK_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	cfgData, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	// 補全預設配置 (如果 yaml 沒寫)
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":7860"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 100
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 10
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	return cfg
}
