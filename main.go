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

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/middleware"
	"github.com/deemkeen/tusk/util"
	"github.com/deemkeen/tusk/web"
)

func main() {

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	database, err := db.Open(conf.Conf.DataDir)
	if err != nil {
		log.Fatal(err)
	}

	log.Print("Running storage migrations...")
	if err := database.RunMigrations(); err != nil {
		log.Fatal("Migration failed", "err", err)
	}
	log.Print("Storage migrations complete")

	var s *ssh.Server
	if conf.Conf.WithSsh {
		s, err = wish.NewServer(
			wish.WithAddress(fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.SshPort)),
			wish.WithHostKeyPath(util.ResolveFilePathWithSubdir(".ssh", "hostkey")),
			wish.WithPasswordAuth(middleware.PasswordHandler(database, conf)),
			wish.WithMiddleware(
				middleware.MainTui(database, feed.NewAssembler(database, conf.Conf.FeedLimit)),
				middleware.AuthMiddleware(),
				logging.Middleware(), // last middleware executed first
			),
		)
		if err != nil {
			log.Fatal(err)
		}
	}

	startServing(s, web.Router(conf, database), conf)
}

func startServing(s *ssh.Server, httpServer *http.Server, conf *util.AppConfig) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if s != nil {
		log.Printf("Starting SSH server on %s:%d", conf.Conf.Host, conf.Conf.SshPort)
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Fatal(err)
			}
		}()
	}

	go func() {
		log.Printf("Starting HTTP server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-done
	log.Print("Stopping servers")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if s != nil {
		if err := s.Shutdown(ctx); err != nil {
			log.Error("ssh shutdown", "err", err)
		}
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("http shutdown", "err", err)
	}
}
