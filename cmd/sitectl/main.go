package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
	"github.com/halewell/halewell/internal/mailer"
	"github.com/halewell/halewell/internal/media"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/server"
	"github.com/halewell/halewell/internal/store"
)

func main() {
	configPath := flag.String("config", "cmd/sitectl/config.toml", "path to site config")
	flag.Parse()

	log := observability.InitLogger("sitectl")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureDirs(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewStore(cfg.DB.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	mediaStore, err := media.NewStore(cfg.Site.MediaDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(1)
	}

	mail := mailer.New(cfg.Mail, log)
	blogSvc := blog.NewService(st, mail, cfg.Site, log)

	engine := gen.NewEngine(st, cfg.Generate.RecentDays)
	bank := gen.DefaultBank()
	selector := gen.NewSelector(engine, bank, st, cfg.Generate.SimilarityThreshold)
	detector := gen.NewDetector(engine, bank, st, cfg.Generate.SimilarityThreshold)
	composer := gen.NewTemplateComposer(engine)
	pipeline := gen.NewPipeline(selector, detector, composer, blogSvc, engine, st, log)
	calendar := gen.NewCalendar(selector, engine)

	srv := server.New(cfg, blogSvc, st, engine, pipeline, calendar, mediaStore, log)
	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "sitectl: %v\n", err)
		os.Exit(1)
	}
}
