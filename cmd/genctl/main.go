package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
	"github.com/halewell/halewell/internal/mailer"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
)

func main() {
	configPath := flag.String("config", "cmd/sitectl/config.toml", "path to site config")
	topic := flag.String("topic", "", "explicit topic, empty lets the selector pick")
	category := flag.String("category", "", "category to generate for")
	difficulty := flag.String("difficulty", "", "beginner|intermediate|advanced")
	count := flag.Int("count", 0, "pieces to generate, defaults to config")
	draft := flag.Bool("draft", false, "create drafts instead of publishing")
	report := flag.Bool("report", false, "print the 30 day diversity report and exit")
	flag.Parse()

	log := observability.InitLogger("genctl")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureDirs(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewStore(cfg.DB.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	mail := mailer.New(cfg.Mail, log)
	blogSvc := blog.NewService(st, mail, cfg.Site, log)

	engine := gen.NewEngine(st, cfg.Generate.RecentDays)
	bank := gen.DefaultBank()
	selector := gen.NewSelector(engine, bank, st, cfg.Generate.SimilarityThreshold)
	detector := gen.NewDetector(engine, bank, st, cfg.Generate.SimilarityThreshold)
	composer := gen.NewTemplateComposer(engine)
	pipeline := gen.NewPipeline(selector, detector, composer, blogSvc, engine, st, log)

	ctx := context.Background()

	if *report {
		rep, err := engine.DiversityReport(ctx, 30)
		if err != nil {
			fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
			os.Exit(1)
		}
		printJSON(rep)
		return
	}

	n := *count
	if n < 1 {
		n = cfg.Generate.Count
	}
	summary, err := pipeline.RunBatch(ctx, n, gen.Options{
		Topic:      *topic,
		Category:   *category,
		Difficulty: *difficulty,
		Publish:    !*draft && cfg.Generate.Publish,
	})
	printJSON(summary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
	}
}
