package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/logger"
	"github.com/templui/plateshare/internal/query"
	"github.com/templui/plateshare/internal/service"
)

// Env holds the services the commands share. They are built lazily on the
// first command so --help works without a backend.
type Env struct {
	APIBaseURL string
	Timeout    time.Duration
	PageSize   int
	Verbose    bool

	foods    *service.FoodService
	requests *service.RequestService
}

func Bind(root *cobra.Command) *Env {
	_ = godotenv.Load()

	env := &Env{}
	flags := root.PersistentFlags()
	flags.StringVar(&env.APIBaseURL, "api", os.Getenv("API_BASE_URL"), "REST backend base URL (env API_BASE_URL)")
	flags.DurationVar(&env.Timeout, "timeout", 15*time.Second, "backend request timeout")
	flags.IntVar(&env.PageSize, "page-size", 12, "foods per page")
	flags.BoolVarP(&env.Verbose, "verbose", "v", false, "log backend calls")
	return env
}

func (e *Env) services() (*service.FoodService, *service.RequestService, error) {
	if e.foods != nil {
		return e.foods, e.requests, nil
	}
	if e.APIBaseURL == "" {
		return nil, nil, fmt.Errorf("no backend configured, set --api or API_BASE_URL")
	}

	logger.InitCLI(e.Verbose)

	client := api.New(e.APIBaseURL, e.Timeout)
	cache := query.New()
	email := service.NewEmailService("", "", "", "", "PlateShare", true)

	e.foods = service.NewFoodService(client, cache, nil, e.PageSize)
	e.requests = service.NewRequestService(client, cache, e.foods, email)
	return e.foods, e.requests, nil
}
