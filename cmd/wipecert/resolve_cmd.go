package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"wipecert/internal/config"
	"wipecert/internal/domain"
	"wipecert/internal/infra/ledger"
	"wipecert/internal/infra/pinning"
	"wipecert/internal/usecase"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var certificateID string
	var outPath string
	fs.StringVar(&certificateID, "id", "", "certificate id")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if certificateID == "" {
		fmt.Fprintln(os.Stderr, "verify requires --id")
		return 1
	}

	uc, code := newResolver()
	if uc == nil {
		return code
	}
	view, err := uc.Verify(context.Background(), certificateID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	return emit(outPath, view)
}

func runDetails(args []string) int {
	fs := flag.NewFlagSet("details", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var certificateID string
	var outPath string
	fs.StringVar(&certificateID, "id", "", "certificate id")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if certificateID == "" {
		fmt.Fprintln(os.Stderr, "details requires --id")
		return 1
	}

	uc, code := newResolver()
	if uc == nil {
		return code
	}
	details, err := uc.Details(context.Background(), certificateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "certificate not found")
			return 1
		}
		fmt.Fprintf(os.Stderr, "details: %v\n", err)
		return 1
	}
	return emit(outPath, details)
}

func newResolver() (*usecase.ResolveCertificate, int) {
	cfg := config.FromEnv()
	ledgerClient, err := ledger.New(context.Background(), cfg, cliLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return nil, 1
	}
	return &usecase.ResolveCertificate{
		Ledger: ledgerClient,
		Pinner: pinning.NewFromConfig(cfg),
	}, 0
}

func emit(outPath string, value any) int {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
