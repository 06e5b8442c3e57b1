package api

import "github.com/mfreitas/memflash/internal/services"

// Server bundles the services the HTTP layer exposes.
type Server struct {
	ItemService   services.ItemService
	ReviewService services.ReviewService
	ForecastDays  int
}
