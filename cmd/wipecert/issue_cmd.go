package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"wipecert/internal/config"
	"wipecert/internal/domain"
	"wipecert/internal/infra/ledger"
	"wipecert/internal/infra/pinning"
	"wipecert/internal/infra/policyopa"
	"wipecert/internal/infra/render"
	"wipecert/internal/usecase"
)

func runIssue(args []string) int {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var recordPath string
	var outPath string
	fs.StringVar(&recordPath, "record", "", "wipe record JSON path")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if recordPath == "" {
		fmt.Fprintln(os.Stderr, "issue requires --record")
		return 1
	}

	raw, err := os.ReadFile(recordPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read record: %v\n", err)
		return 1
	}
	var record domain.WipeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		fmt.Fprintf(os.Stderr, "decode record: %v\n", err)
		return 1
	}

	cfg := config.FromEnv()
	log := cliLogger(cfg)
	ctx := context.Background()

	ledgerClient, err := ledger.New(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}

	uc := &usecase.IssueCertificate{
		Ledger:          ledgerClient,
		Renderer:        render.New(cfg.ArtifactDir),
		Pinner:          pinning.NewFromConfig(cfg),
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		Log:             log,
	}
	if cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(ctx, cfg.PolicyBundlePath, cfg.PolicyBundleID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "policy bundle: %v\n", err)
			return 1
		}
		uc.Policy = engine
	}

	result := uc.Execute(ctx, record)
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal result: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}
