package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/config"
	"github.com/streed/smart-notes/internal/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize smart-notes configuration",
	Long: heredoc.Doc(`
		Initialize smart-notes configuration interactively or with flags.
		This command writes the configuration file, creates the data directory
		and prepares the notes database.

		Examples:
		  smart-notes init -i
		  smart-notes init --provider openrouter --api-key sk-or-...
		  smart-notes init --provider ollama --model llama3.2
		  smart-notes init --provider none
	`),
	RunE: runInit,
}

var (
	initDataDir     string
	initProvider    string
	initAPIKey      string
	initModel       string
	initInteractive bool
	initForce       bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Data directory for storing the notes database")
	initCmd.Flags().StringVar(&initProvider, "provider", "", "AI provider: openrouter, ollama or none")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "OpenRouter API key")
	initCmd.Flags().StringVar(&initModel, "model", "", "Model name sent to the provider")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Run interactive setup")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("Configuration already exists at: %s\n", configPath)
		if !confirm("Do you want to overwrite it?") {
			fmt.Println("Configuration initialization cancelled.")
			return nil
		}
	}

	if initInteractive {
		promptInitSettings(bufio.NewReader(os.Stdin))
	}
	if initDataDir != "" {
		initDataDir = expandPath(initDataDir)
	}

	cfg, err := config.InitializeConfig(initDataDir, initProvider, initAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if initModel != "" {
		cfg.Model = initModel
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}

	notesDB, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if err := notesDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	apiKey, _ := cfg.Get("api-key")
	fmt.Println()
	fmt.Println(heading("Configuration Summary"))
	fmt.Println(label("Config file    ", configPath))
	fmt.Println(label("Data directory ", cfg.DataDirectory))
	fmt.Println(label("Database path  ", cfg.GetDatabasePath()))
	fmt.Println(label("Provider       ", cfg.Provider))
	fmt.Println(label("Model          ", cfg.Model))
	fmt.Println(label("API key        ", apiKey))
	fmt.Println(label("Response cache ", cfg.CacheDirectory))

	fmt.Println("\nConfiguration initialized successfully!")
	if cfg.Provider == "openrouter" && cfg.APIKey == "" {
		fmt.Println("No API key set: summaries, tags and flashcards will use rule-based processing.")
		fmt.Println("Set one later with 'smart-notes config set api-key <key>'.")
	}
	return nil
}

func promptInitSettings(reader *bufio.Reader) {
	fmt.Println(heading("Smart Notes Configuration Setup"))
	fmt.Println()

	initDataDir = ask(reader, "Data directory", config.GetDefaultDataDirectory(), initDataDir)
	initProvider = ask(reader, "AI provider (openrouter, ollama, none)", "openrouter", initProvider)
	switch initProvider {
	case "openrouter":
		initAPIKey = ask(reader, "OpenRouter API key", "", initAPIKey)
	case "ollama":
		initModel = ask(reader, "Ollama model", "llama3.2", initModel)
	}
}

// ask prompts for a value, keeping current when set and falling back to def
// on empty input.
func ask(reader *bufio.Reader, prompt, def, current string) string {
	if current != "" {
		def = current
	}
	if def != "" {
		fmt.Printf("%s [%s]: ", prompt, def)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	input, _ := reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return def
}
