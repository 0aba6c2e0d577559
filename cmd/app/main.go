package main

import (
	"context"
	"fmt"
	"log"
	"os"

	adminservice "shop-admin/internal/admin-service"
	"shop-admin/internal/config"
	"shop-admin/internal/mylogger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: app admin-service")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "admin-service":
		cfg, err := config.New()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		mylog, err := mylogger.New(cfg.Log.Level)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}

		mylog.Action("admin_service_started").Info("Admin service starting up")
		if err := adminservice.Execute(context.Background(), mylog, cfg); err != nil {
			mylog.Action("admin_service_stopped").Error("Admin service stopped with error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown service %q\n", os.Args[1])
		os.Exit(1)
	}
}
