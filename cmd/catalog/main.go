package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"folder-catalog/internal/http"
	"folder-catalog/internal/indexer"
	"folder-catalog/internal/service"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API catalogs the files under one library folder: it indexes the tree,
// quarantines duplicates and exposes files, catalog entries and tags.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Folder Catalog API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "catalog",
	Short:        "Index a folder into a browsable catalog",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the startup scan and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()
		// Scans started over the API run to completion before the database closes.
		defer a.reconciler.Wait()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := a.reconciler.Startup(ctx, a.cfg.StartupScan); err != nil {
			if !errors.Is(err, indexer.ErrPartialScan) {
				return fmt.Errorf("startup scan failed: %w", err)
			}
			slog.Warn("Startup scan completed with errors", "error", err)
		}

		router := http.NewRouter(&http.Deps{
			Files:      service.NewFileService(a.lib, a.store, a.reconciler.Indexer()),
			Store:      a.store,
			Reconciler: a.reconciler,
			Library:    a.lib,
			Port:       a.cfg.Port,
			DBDriver:   a.cfg.DBDriver,
		})

		server := &nethttp.Server{
			Addr:              ":" + strconv.Itoa(a.cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Starting API server", "addr", server.Addr, "root", a.lib.Root())
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("API server failed: %w", err)
		case <-ctx.Done():
		}

		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

var scanMode string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan of the library and print its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := indexer.ParseMode(scanMode)
		if err != nil {
			return err
		}

		// Logs go to stderr so stdout carries only the report.
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()

		report, runErr := a.reconciler.Run(cmd.Context(), mode)
		if report != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
		return runErr
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanMode, "mode", string(indexer.ModeFull), "scan mode: full or initial")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
}
