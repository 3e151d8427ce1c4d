package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"snake-arena/auth"
	"snake-arena/constants"
	"snake-arena/handlers"
	"snake-arena/logging"
	"snake-arena/server"
)

func main() {
	var (
		addr     string
		httpAddr string
		players  int
		logFile  string
	)
	flag.StringVar(&addr, "addr", ":4000", "TCP listen address for game clients")
	flag.StringVar(&httpAddr, "http", ":8080", "HTTP listen address for websocket gateway and monitoring (empty disables)")
	flag.IntVar(&players, "players", constants.DEFAULT_PLAYERS, "player slot capacity")
	flag.StringVar(&logFile, "log", "snake-arena.log", "rolling log file path (empty disables)")
	flag.Parse()

	if err := logging.InitLogger(logFile); err != nil {
		panic(err)
	}
	defer logging.Sync()

	srv := server.New(server.Config{Addr: addr, Players: players})

	var httpSrv *http.Server
	if httpAddr != "" {
		token, err := auth.GenerateAdminToken("ops")
		if err != nil {
			logging.Log.Fatalf("mint admin token: %v", err)
		}
		logging.Log.Infof("admin token: %s", token)

		mux := http.NewServeMux()
		mux.Handle("/ws", handlers.NewWSHandler(srv))
		handlers.NewAdminHandler(srv).Mount(mux)
		httpSrv = &http.Server{Addr: httpAddr, Handler: mux}
		go func() {
			logging.Log.Infof("http surface on %s", httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Log.Errorf("http listen: %v", err)
			}
		}()
	}

	// Ctrl+C force-closes the listeners and every connection.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logging.Log.Info("signal received, stopping")
		srv.Stop()
	}()

	if err := srv.Run(); err != nil {
		logging.Log.Fatalf("server: %v", err)
	}
	if httpSrv != nil {
		_ = httpSrv.Close()
	}
}
