package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/api"
	"github.com/streed/smart-notes/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: heredoc.Doc(`
		Start an HTTP API server that exposes smart-notes over REST endpoints.

		Endpoints live under /api/v1:

		  notes, flashcards        CRUD for stored notes and flashcards
		  summarize, tag           summarize or tag posted text
		  search                   ranked search over notes and flashcards
		  chatbot                  tags, summary and starter flashcards in one call
		  generate-flashcards      build flashcards from text, optionally saving them
		  upload                   extract text from .txt, .md or .pdf uploads

		Examples:
		  smart-notes serve                              # Start on localhost:8080
		  smart-notes serve --host 0.0.0.0 --port 3000   # All interfaces, port 3000
	`),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind the server to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to bind the server to")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	logger.Info("Initializing HTTP API server...")

	apiServer := api.NewAPIServer(db.Conn(), svc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start(serveHost, servePort)
	}()

	base := fmt.Sprintf("http://%s:%d/api/v1", serveHost, servePort)
	fmt.Println()
	fmt.Println(heading("Smart Notes HTTP API Server"))
	fmt.Println(rule())
	fmt.Println(label("Server URL", base))
	fmt.Println(label("Health    ", base+"/health"))
	fmt.Println(label("Provider  ", fmt.Sprintf("%s %s", svc.Provider.Kind(), svc.Provider.Model())))
	fmt.Println()
	fmt.Println("Example API calls:")
	fmt.Printf("   curl %s/notes\n", base)
	fmt.Printf("   curl '%s/search?q=biology'\n", base)
	fmt.Printf("   curl -X POST -d '{\"text\": \"...\"}' %s/summarize\n", base)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")
	fmt.Println(rule())
	fmt.Println()

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down gracefully...", sig)
		if err := apiServer.Stop(); err != nil {
			logger.Error("Error during server shutdown: %v", err)
			return err
		}
		logger.Info("Server stopped successfully")
		return nil
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error: %v", err)
			return err
		}
		return nil
	}
}
