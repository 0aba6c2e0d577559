package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	adminconsole "shop-admin/internal/admin-console"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/middleware"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/config"
)

func main() {
	baseURL := flag.String("url", DefaultBaseURL, "admin service base URL")
	token := flag.String("token", os.Getenv("ADMIN_TOKEN"), "admin JWT")
	watch := flag.Bool("watch", false, "reload the listing when users change")
	mint := flag.String("mint", "", "sign a development admin token for this user id with JWT_SECRET and exit")
	flag.Parse()

	if *mint != "" {
		cfg, err := config.New()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		signed, err := middleware.SignToken(cfg.App.JwtSecret, models.Caller{UserId: *mint, Username: *mint, Role: models.RoleAdmin}, DevTokenTTL)
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Println(signed)
		return
	}

	if *token == "" {
		log.Fatal("An admin token is required, pass -token or set ADMIN_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := adminconsole.NewClient(*baseURL, *token)
	console := adminconsole.NewConsole(client)
	runner := NewRunner(console, client, os.Stdout)

	if err := runner.Exec(ctx, "list"); err != nil {
		runner.logger.Error("%v", err)
		if errors.Is(err, myerrors.ErrAuthorization) {
			os.Exit(1)
		}
	}

	if *watch {
		go func() {
			err := adminconsole.Watch(ctx, client.WatchURL(), *token, func(e models.UsersChangedEvent) {
				runner.logger.WebSocket("%s set %s to %d points", e.ChangedBy, e.UserId, e.Points)
				if console.State() != adminconsole.Viewing {
					return
				}
				if err := console.Load(ctx); err == nil {
					runner.Render()
				}
			})
			if err != nil {
				runner.logger.Warn("watch stopped: %v", err)
			}
		}()
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(os.Stdout, helpText)
	for {
		fmt.Fprint(os.Stdout, "> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := runner.Exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return
				}
				runner.logger.Error("%v", err)
			}
		}
	}
}
