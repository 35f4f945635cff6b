package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iskacare/clinic-api/app"
	"iskacare/clinic-api/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	app.MakeLogger()

	err := config.Setup()
	if err != nil {
		if errors.Is(err, config.ErrMissingSecret) {
			fmt.Println("WARNING: You haven't set a JWT secret. Please set it as an environment variable or in the config.toml file.\nA random JWT secret:\n\n" + config.GenSecret() + "\n\nPaste it into your config.toml file.")
			os.Exit(1)
		}

		panic(err)
	}

	if err := app.SetLogLevel(viper.GetString("app.log_level")); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down cleanly", zap.Error(err))
	}
}
