package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"contentguard/internal/config"
	"contentguard/internal/consistency"
	"contentguard/internal/corruption"
	"contentguard/internal/doctree"
	"contentguard/internal/keys"
	"contentguard/internal/kv"
	"contentguard/internal/structural"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "check":
		runCheck(os.Args[2:])
	case "wait":
		runWait(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: contentguard <check|wait> [flags]")
	os.Exit(2)
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	refPath := fs.String("ref", "", "path to the reference document (JSON)")
	candPath := fs.String("cand", "", "path to the candidate document (JSON)")
	fixPath := fs.String("fix", "", "write a corrected document to this path")
	_ = fs.Parse(args)
	if *refPath == "" || *candPath == "" {
		log.Fatal("-ref and -cand are required")
	}

	ref := readDoc(*refPath)
	cand := readDoc(*candPath)

	issues := corruption.Detect(cand)
	for _, is := range issues {
		log.Printf("corruption: %s at %s: %s", is.Kind, is.Path, is.Detail)
	}

	res := structural.Validate(ref, cand)
	for _, d := range res.Diffs {
		log.Printf("structure: %s at %s: %s", d.Kind, d.Path, d.Detail)
	}

	if res.OK && len(issues) == 0 {
		log.Println("candidate is structurally conformant and clean")
		return
	}

	if *fixPath != "" {
		corrected := structural.Correct(ref, cand)
		if err := os.WriteFile(*fixPath, corrected.Encode(), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("corrected document written to %s", *fixPath)
	}
	os.Exit(1)
}

func runWait(args []string) {
	fs := flag.NewFlagSet("wait", flag.ExitOnError)
	artifactID := fs.String("artifact", "", "artifact id")
	lang := fs.String("lang", "", "language variant")
	dept := fs.String("dept", "", "department variant")
	_ = fs.Parse(args)
	if *artifactID == "" {
		log.Fatal("-artifact is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	waiter := consistency.NewWaiter(store, logger)
	res := waiter.Wait(context.Background(), consistency.Request{
		ArtifactID:   *artifactID,
		Keys:         keys.Expected(*artifactID, *lang, *dept),
		Namespace:    cfg.Store.Namespace,
		Enabled:      cfg.Consistency.Enabled,
		InitialDelay: cfg.Consistency.InitialDelay,
		MaxDelay:     cfg.Consistency.MaxDelay,
		MaxWait:      cfg.Consistency.MaxWait,
	})

	logger.Info("wait finished",
		zap.String("artifact_id", *artifactID),
		zap.Bool("satisfied", res.Satisfied),
		zap.Bool("skipped", res.Skipped),
		zap.Int("attempts", res.Attempts),
		zap.Duration("elapsed", res.Elapsed),
		zap.Strings("missing", res.Missing))

	if !res.Satisfied {
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "postgres":
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		return kv.NewPostgresStore(cfg.Store.DSN)
	case "s3":
		return kv.NewS3Store(kv.S3Config{
			Endpoint:  cfg.Store.S3.Endpoint,
			Region:    cfg.Store.S3.Region,
			AccessKey: cfg.Store.S3.AccessKey,
			SecretKey: cfg.Store.S3.SecretKey,
			Bucket:    cfg.Store.S3.Bucket,
			UseSSL:    cfg.Store.S3.UseSSL,
		})
	}
	return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.Store.Backend)
}

func readDoc(path string) *doctree.Node {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	node, err := doctree.Parse(raw)
	if err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}
	return node
}
