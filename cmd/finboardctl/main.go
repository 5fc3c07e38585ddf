package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"finboard.app/app"
)

var rootCmd = &cobra.Command{
	Use:   "finboardctl",
	Short: "FinBoard maintenance tool",
	Long: `finboardctl manages a FinBoard deployment's panel cache from the command line.

It connects to the same cache backend the server uses (memory backends only
hold data inside the server process, so point it at a redis or database
backend to see shared state).

Common usage:
  finboardctl cache stats              # Show entry counts per validity state
  finboardctl cache clear              # Drop every cached panel
  finboardctl cache cleanup            # Drop only expired entries
  finboardctl cache invalidate <key>   # Drop a single panel key`,
	Version: "1.0.0",
}

// openApplication wires the cache exactly the way the server does, so CLI
// maintenance always targets the configured backend and namespace.
func openApplication() (*app.Application, error) {
	_ = godotenv.Load()

	application, err := app.NewApplication()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
