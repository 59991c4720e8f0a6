package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/named-data/lfq/report"
	"github.com/named-data/lfq/std/log"
	"github.com/spf13/cobra"
)

type server struct {
	reportFlags
	listen string
}

func (s *server) String() string {
	return "serve"
}

func cmdServe() *cobra.Command {
	s := &server{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "serve [DB-DIR]",
		Short:   "Serve recorded reports over HTTP as JSON",
		Args:    cobra.MaximumNArgs(1),
		Example: "  lfq serve reports --listen 127.0.0.1:8080",
		Run:     s.run,
	}

	cmd.Flags().StringVar(&s.listen, "listen", "127.0.0.1:8080", "Listen address")
	s.register(cmd, "Default number of reports per response")
	return cmd
}

func (s *server) run(cmd *cobra.Command, args []string) {
	store, limit, err := s.open(cmd, args)
	if err != nil {
		log.Fatal(s, "Unable to open report store", "err", err)
		return
	}
	defer store.Close()

	mux := chi.NewRouter()
	report.NewHandler(store, limit).Register(mux)
	srv := &http.Server{Addr: s.listen, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Info(s, "Serving reports", "listen", s.listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(s, "Server failed", "err", err)
	}
}
