// cmd/tools/screen-application/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"candidate-screening/internal/classifier"
	"candidate-screening/internal/common/config"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/ingest"
	"candidate-screening/internal/models"
	"candidate-screening/internal/screening"
	"candidate-screening/internal/workflow"
)

var configPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	screenCmd := flag.NewFlagSet("screen", flag.ExitOnError)
	extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)

	// Screen command flags
	role := screenCmd.String("role", "", "Role the candidate applied for (e.g., Python Developer)")
	fromResume := screenCmd.Bool("resume", false, "Treat the input file as plain resume text")
	verbose := screenCmd.Bool("v", false, "Log every stage")
	screenCmd.StringVar(&configPath, "config", "", "Path to config file (defaults to configs/config.yaml)")
	timeout := screenCmd.Duration("timeout", 2*time.Minute, "Overall timeout")

	// Extract command flags
	extractCmd.StringVar(&configPath, "config", "", "Path to config file (defaults to configs/config.yaml)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if validateCmd.NArg() != 1 {
			fmt.Println("Error: validate takes exactly one application file.")
			os.Exit(1)
		}
		if err := validateFile(validateCmd.Arg(0)); err != nil {
			fmt.Printf("Application validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Application validation passed.")

	case "screen":
		screenCmd.Parse(os.Args[2:])
		if *role == "" || screenCmd.NArg() != 1 {
			fmt.Println("Error: role and one input file are required for screen.")
			screenCmd.Usage()
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		if err := screenFile(ctx, screenCmd.Arg(0), *role, *fromResume, *verbose); err != nil {
			fmt.Printf("Screening failed: %v\n", err)
			os.Exit(1)
		}

	case "extract":
		extractCmd.Parse(os.Args[2:])
		if extractCmd.NArg() != 1 {
			fmt.Println("Error: extract takes exactly one resume file.")
			os.Exit(1)
		}
		if err := extractFile(context.Background(), extractCmd.Arg(0)); err != nil {
			fmt.Printf("Extraction failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	result, err := ingest.Validate(data)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, msg := range result.Messages() {
			fmt.Printf("  - %s\n", msg)
		}
		return fmt.Errorf("%d schema violation(s)", len(result.Errors))
	}
	return nil
}

func screenFile(ctx context.Context, path, role string, fromResume, verbose bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewNoOpLogger()
	if verbose {
		log = logger.NewStructured("debug", "console")
	}

	clf := newClassifier(cfg, log)
	app, err := readApplication(ctx, clf, path, fromResume)
	if err != nil {
		return err
	}

	s, err := screening.New(screening.Deps{
		Classifier: clf,
		Logger:     log,
		Observers:  []workflow.Observer{screening.LogObserver{Logger: log}},
	})
	if err != nil {
		return err
	}

	result, err := s.Screen(ctx, app, role)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func extractFile(ctx context.Context, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := readApplication(ctx, newClassifier(cfg, logger.NewNoOpLogger()), path, true)
	if err != nil {
		return err
	}
	return printJSON(app)
}

func readApplication(ctx context.Context, clf classifier.Classifier, path string, fromResume bool) (*models.Application, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if fromResume {
		return ingest.NewExtractor(clf).Extract(ctx, string(data))
	}
	return ingest.Parse(data)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newClassifier(cfg *config.Config, log logger.Logger) classifier.Classifier {
	return classifier.NewHTTPClassifier(&classifier.HTTPConfig{
		BaseURL:     cfg.APIs.GenAI.BaseURL,
		APIKey:      cfg.APIs.GenAI.APIKey,
		Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxTokens:   cfg.APIs.GenAI.MaxTokens,
		Temperature: cfg.APIs.GenAI.Temperature,
	}, log)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func help() {
	fmt.Println("Usage: screen-application <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  validate <file>                     Check an application document against the schema")
	fmt.Println("  screen -role <role> [-resume] <file> Screen an application (or resume text) and print the result")
	fmt.Println("  extract <file>                      Turn resume text into an application document")
	fmt.Println("  help                                Show this help message")
}
