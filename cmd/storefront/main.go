package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/PhamBaBac/kanban-shopping-client/api"
	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/internal/config"
	"github.com/PhamBaBac/kanban-shopping-client/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if c.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store := session.NewFileStore(c.GetDataFolder())
	apiClient, err := client.New(c.GetBaseURL(), store,
		client.WithLogger(log.Logger),
		client.WithRefreshLead(c.GetRefreshLead()),
		client.WithHTTPClient(&http.Client{Timeout: c.GetHTTPTimeout()}),
	)
	if err != nil {
		return fmt.Errorf("client.New: %w", err)
	}

	if len(os.Args) < 2 {
		usage(c.GetAppName())
		return nil
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "login":
		return login(ctx, apiClient, store, os.Args[2:])
	case "logout":
		return api.NewAuth(apiClient, store).Logout(ctx)
	case "whoami":
		return whoami(store)
	case "cart":
		return showCart(ctx, apiClient, store)
	case "products":
		return listProducts(ctx, apiClient, os.Args[2:])
	case "watch":
		return watchSession(c.GetDataFolder(), store)
	default:
		usage(c.GetAppName())
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func usage(appName string) {
	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Println()
	fmt.Println("Usage: storefront <login|logout|whoami|cart|products|watch>")
}

func login(ctx context.Context, apiClient *client.Client, store session.Store, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: storefront login <email> <password>")
	}
	auth := api.NewAuth(apiClient, store)
	result, err := auth.Authenticate(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if result.MFAEnabled {
		fmt.Print("MFA code: ")
		var code string
		if _, err := fmt.Scanln(&code); err != nil {
			return err
		}
		if err := auth.VerifyMFA(ctx, code); err != nil {
			return err
		}
	}
	fmt.Println("Logged in.")
	return nil
}

func whoami(store session.Store) error {
	record := store.Read()
	if record == nil {
		fmt.Println("Not logged in (anonymous session).")
		return nil
	}
	fmt.Printf("%s %s <%s>\n", record.FirstName, record.LastName, record.Email)
	if expiry, ok := record.TokenExpiry(); ok {
		fmt.Printf("Access token expires %s\n", expiry.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showCart(ctx context.Context, apiClient *client.Client, store session.Store) error {
	cart, err := api.NewCarts(apiClient, store).Get(ctx)
	if err != nil {
		return err
	}
	for _, item := range cart.Items {
		fmt.Printf("%dx %s  %.2f\n", item.Quantity, item.Title, item.Price)
	}
	fmt.Printf("Total: %.2f\n", cart.Total)
	return nil
}

func listProducts(ctx context.Context, apiClient *client.Client, args []string) error {
	filter := api.ProductFilter{}
	if len(args) > 0 {
		filter.Query = args[0]
	}
	products, err := api.NewProducts(apiClient).List(ctx, filter)
	if err != nil {
		return err
	}
	for _, product := range products {
		fmt.Printf("%s  %s  %.2f\n", product.ID, product.Title, product.Price)
	}
	return nil
}

func watchSession(dir string, store session.Store) error {
	watcher, err := session.NewWatcher(dir, log.Logger, func() {
		if record := store.Read(); record != nil {
			fmt.Printf("session updated: %s\n", record.Email)
		} else {
			fmt.Println("session cleared")
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	fmt.Println("Watching session changes, Ctrl-C to stop.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}
