// Command bot runs the Telegram task-list bot together with its health
// endpoints. Configuration comes from CONFIG_PATH (default ./config.yaml)
// and environment variables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/heartmarshall/taskbot/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}
