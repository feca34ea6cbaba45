// Command mockapi runs the in-memory backend standalone so the desktop client
// can be exercised without the production server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dimfdesk/config"
	"dimfdesk/mockapi"
	"dimfdesk/utils"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	echoID := flag.Bool("echo-created-id", false, "include post_id in create responses")
	flag.Parse()

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	store := mockapi.NewStore()
	if _, ok := store.AddUser("admin", "admin@example.com", "admin"); !ok {
		utils.S().Fatal("failed to seed admin user")
	}

	router := mockapi.NewRouter(store, mockapi.Options{EchoCreatedID: *echoID})
	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		utils.S().Infof("mock API listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.S().Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.S().Errorf("shutdown error: %v", err)
		return
	}
	utils.S().Info("mock API shutdown complete")
}
