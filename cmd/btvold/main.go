// Command btvold runs the Bluetooth volume coordinator daemon in the
// foreground. It is equivalent to "btvol daemon run" and exists for service
// managers that want a dedicated binary.
package main

import (
	"context"
	"flag"
	"log"

	"btvol/internal/config"
	"btvol/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("btvold: %v", err)
	}
}
