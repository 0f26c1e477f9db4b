package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/territory/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	config := server.ConfigFromEnv()
	log.SetLevel(config.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	Server := Server{
		GameServer: server.NewGameServer(ctx, config),
	}
	go Server.GameServer.Loop()
	Server.routes()

	httpServer := &http.Server{Addr: ":" + config.Port, Handler: Server.router}
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		httpServer.Close()
	}()
	log.Infof("territory server listening on :%s", config.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalln(err)
	}
}
