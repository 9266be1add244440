package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heatzone/internal/bus"
	"heatzone/internal/handlers"
	"heatzone/internal/logger"
	"heatzone/internal/repository"
	"heatzone/internal/schedule"
	"heatzone/internal/server"
	"heatzone/internal/service"

	"github.com/spf13/viper"
)

const defaultMonitorTick = 1 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies; the bus callback closes over the service
	// aggregate assigned right below it
	repos := repository.NewRepository(db)
	sched := schedule.NewSynchronizer()

	var services *service.Service
	mqttClient := bus.New(busConfig(), log, func(field string, payload []byte) {
		if services != nil {
			services.Sync.HandleMessage(field, payload)
		}
	})
	services = service.NewService(repos, sched, mqttClient, log)
	apiHandler := handlers.NewHandler(services, log)

	// connect to the broker; a failure leaves the app in degraded mode
	// where saves return 409 until the auto-reconnect succeeds
	if err := mqttClient.Connect(); err != nil {
		log.Errorw("mqtt connect failed; running degraded", "err", err)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// record broker connectivity transitions in the event log
	go services.Monitor.Run(ctx, defaultMonitorTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, mqttClient, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// busConfig reads the broker settings; topic and profile default to the
// shared controller namespace.
func busConfig() bus.Config {
	cfg := bus.Config{
		Host:     viper.GetString("mqtt.host"),
		Port:     viper.GetInt("mqtt.port"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
		Topic:    viper.GetString("profile.topic"),
		Profile:  viper.GetString("profile.name"),
	}
	if cfg.Topic == "" {
		cfg.Topic = "heatzone/profiles"
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	return cfg
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, mqttClient *bus.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// drop the broker session
	mqttClient.Disconnect()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
