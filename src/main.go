package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cmdbd/src/datastore"
	"cmdbd/src/directors"
	"cmdbd/src/framework"
	"cmdbd/src/settings"
)

// printUsage prints helpful usage information
func printUsage() {
	log.Println("cmdbd - a schema-driven CMDB core")
	log.Println("\nUsage:")
	log.Println("  cmdbd [options]")
	log.Println("\nOptions:")
	flag.PrintDefaults()

	log.Println("\nExamples:")
	log.Println("  cmdbd --mongouri=mongodb://localhost:27017")
	log.Println("  cmdbd --database=cmdb --logdir=cmdb_logs")
}

func main() {
	// Get the global settings instance
	args := settings.GetSettings()

	// Define command line flags that map to the Arguments struct
	flag.StringVar(&args.MongoURI, "mongouri", "mongodb://localhost:27017", "Connection string of the backing store")
	flag.StringVar(&args.DatabaseName, "database", "cmdb", "Name of the store database")
	flag.StringVar(&args.LogDir, "logdir", "./log_files", "Directory to store log files (default: stdout)")
	flag.StringVar(&args.Host, "host", "127.0.0.1", "Host name or IP address to listen on")
	flag.IntVar(&args.Port, "port", 4000, "Port for the API server")
	flag.IntVar(&args.DefaultPageSize, "pagesize", 25, "Default page size of list views")
	flag.BoolVar(&args.Verbose, "verbose", true, "Enable verbose logging")
	flag.StringVar(&args.ConfigFile, "config", "", "Path to config file")
	flag.BoolVar(&args.AuthEnabled, "auth", false, "Enable authentication")
	flag.StringVar(&args.Version, "version", "0.0.1alpha", "Shows version")
	flag.BoolVar(&args.PrintToScreen, "print", true, "Print log messages to screen")
	flag.BoolVar(&args.Debug, "debug", true, "Enable debug mode")

	// Parse the command line
	flag.Parse()

	// Configure logger
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	if err := validateArguments(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		printUsage()
		os.Exit(1)
	}

	// Print the arguments if in verbose mode
	if args.Verbose {
		log.Println("cmdbd starting with options:")
		log.Printf("  Store URI: %s\n", args.MongoURI)
		log.Printf("  Database: %s\n", args.DatabaseName)
		log.Printf("  Log Directory: %s\n", args.LogDir)
		log.Printf("  Host: %s\n", args.Host)
		log.Printf("  Port: %d\n", args.Port)
		log.Printf("  Verbose: %v\n", args.Verbose)
		log.Printf("  Config File: %s\n", args.ConfigFile)
	}

	sugar, cleanup, err := buildLogger(args)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer cleanup()

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := datastore.NewMongoStore(connectCtx, args, sugar)
	if err != nil {
		log.Fatalf("Failed to connect to the backing store: %v", err)
	}

	typeService := directors.NewTypeService(store, sugar, args)
	userService := directors.NewUserService(store, sugar, args)
	renderer := framework.NewRenderer(userService, sugar)
	objectService := directors.NewObjectService(store, typeService, renderer, sugar, args)
	categoryService := directors.NewCategoryService(store, typeService, sugar, args)

	directors.InitServiceManager(typeService, objectService, categoryService, userService, sugar)

	sugar.Infof("cmdbd %s ready on %s:%d", args.Version, args.Host, args.Port)

	// Handle graceful shutdown
	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	<-shutdownSignal
	fmt.Println("\nShutting down...")

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDisconnect()
	if err := store.Disconnect(disconnectCtx); err != nil {
		log.Printf("Error disconnecting from the store: %v", err)
	}

	fmt.Println("Shutdown complete")
}

// validateArguments validates the arguments and returns an error if invalid
func validateArguments(args *settings.Arguments) error {
	if args.MongoURI == "" {
		return fmt.Errorf("a store connection string is required")
	}
	if args.DatabaseName == "" {
		return fmt.Errorf("a database name is required")
	}

	// Check if the log directory exists or can be created
	if args.LogDir != "" {
		if _, err := os.Stat(args.LogDir); os.IsNotExist(err) {
			if err := os.MkdirAll(args.LogDir, 0755); err != nil {
				return fmt.Errorf("could not create log directory: %w", err)
			}
		}
	}

	// Validate port range
	if args.Port < 1 || args.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", args.Port)
	}

	if args.DefaultPageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", args.DefaultPageSize)
	}
	return nil
}

// buildLogger assembles the zap logger shared by every service, writing to a
// timestamped log file and optionally mirroring to stdout.
func buildLogger(args *settings.Arguments) (*zap.SugaredLogger, func(), error) {
	var cfg zap.Config
	if args.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.OutputPaths = nil
	if args.LogDir != "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logFile := filepath.Join(args.LogDir, fmt.Sprintf("%s_%s_ServerLog.txt", timestamp, args.Host))
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	if args.PrintToScreen || len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = append(cfg.OutputPaths, "stdout")
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }
	return logger.Sugar(), cleanup, nil
}
