// Command storoidctl is an operator CLI that decodes a YAML request body
// and dispatches it against a storoid Store, printing the JSON result.
package main

import (
	"context"
	"os"

	"github.com/wikimedia/storoid/internal/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger, logErr := log.NewLogger("standard", log.Info, os.Stdout, os.Stderr)
		if logErr != nil {
			os.Exit(1)
		}
		logger.ErrorContext(context.Background(), "storoidctl failed", "error", err)
		os.Exit(1)
	}
}
