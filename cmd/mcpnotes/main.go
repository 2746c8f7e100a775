package main

import (
	"context"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/mcpnotes/mcpnotes/internal/api"
	"github.com/mcpnotes/mcpnotes/internal/client"
	"github.com/mcpnotes/mcpnotes/internal/config"
	"github.com/mcpnotes/mcpnotes/internal/detection"
	"github.com/mcpnotes/mcpnotes/internal/notes"
	"github.com/spf13/cobra"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "mcpnotes",
		Short: "A toy MCP notes server and its smoke-test client",
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the notes MCP server",
		Run:   runServer,
	}

	var smokeCmd = &cobra.Command{
		Use:   "smoke",
		Short: "Run the fixed six-step smoke sequence against a running server",
		Run:   runSmoke,
	}

	rootCmd.AddCommand(serveCmd, smokeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg := config.NewConfig()

	storage := notes.NewStorage(cfg.NotesDir)
	if err := storage.Load(); err != nil {
		log.Fatalf("Failed to load notes: %v", err)
	}

	d, err := detection.NewEngine(cfg.RulesPath)
	if err != nil {
		log.Fatalf("Failed to create detection engine: %v", err)
	}

	h := api.NewNotesAPI(cfg, storage, d)

	// Create router
	router := mux.NewRouter()
	router.HandleFunc("/mcp", h.HandleMCP).Methods("POST")
	router.HandleFunc("/mcp/events", h.Events).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start the server
	go func() {
		log.Printf("Starting notes MCP server %s on port %d", cfg.ServerID, cfg.ServerPort)
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-serverErrors:
		log.Fatalf("Error starting server: %v", err)
	case <-shutdown:
		log.Println("Shutting down server...")
		server.Close()
		log.Println("Server shut down successfully")
	}
}

func runSmoke(cmd *cobra.Command, args []string) {
	cfg := config.NewConfig()

	c := client.New(cfg.Endpoint)
	if err := c.RunSequence(context.Background()); err != nil {
		log.Fatalf("Smoke run failed: %v", err)
	}
}
