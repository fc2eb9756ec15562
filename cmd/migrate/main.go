// migrate runs database migrations from the embedded SQL files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg := config.Load()
	if cfg.DBURL == "" {
		fmt.Fprintln(os.Stderr, "database url is not set; create a .env from .env.example or set DB_* env vars")
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DBURL, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			// Already at target version; success.
			return
		}
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
