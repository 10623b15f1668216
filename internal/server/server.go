package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/bensuskins/nutrition-hub/internal/config"
	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/handlers"
	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService) *Server {
	foodRepo := repository.NewFoodItemRepository(database)
	mealRepo := repository.NewMealRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)

	usdaClient := fooddata.NewUSDAClient(cfg.USDABaseURL, cfg.USDAAPIKey, cfg.HTTPClientTimeout)
	openFoodFactsClient := fooddata.NewOpenFoodFactsClient(cfg.OpenFoodFactsBaseURL, cfg.HTTPClientTimeout)

	mealService := services.NewMealService(mealRepo, foodRepo)
	foodService := services.NewFoodService(foodRepo, mealService, usdaClient, openFoodFactsClient)
	statsService := services.NewStatsService(mealRepo, goalRepo)
	goalService := services.NewGoalService(goalRepo)
	recipeService := services.NewRecipeService(recipeRepo, foodRepo, mealService)

	authHandler := handlers.NewAuthHandler(authService)
	foodHandler := handlers.NewFoodHandler(foodService)
	mealHandler := handlers.NewMealHandler(mealService, cfg.DefaultTimezone)
	statsHandler := handlers.NewStatsHandler(statsService, cfg.DefaultTimezone)
	goalHandler := handlers.NewGoalHandler(goalService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	tokenHandler := handlers.NewTokenHandler(authService, cfg.BaseURL)
	feedHandler := handlers.NewMealFeedHandler(authService, mealRepo)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/login", authHandler.Login)
	router.Get("/auth/callback", authHandler.Callback)
	router.Post("/logout", authHandler.Logout)

	router.Get("/ical/meals", feedHandler.Feed)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(authService))

		r.Get("/me", authHandler.Me)

		r.Route("/foods", func(r chi.Router) {
			r.Get("/", foodHandler.List)
			r.Post("/", foodHandler.Create)
			r.Get("/search", foodHandler.Search)
			r.Post("/import", foodHandler.Import)
			r.Get("/barcode/{code}", foodHandler.Barcode)
			r.Get("/details/{fdcID}", foodHandler.Details)
			r.Get("/{id}", foodHandler.Get)
			r.Put("/{id}", foodHandler.Update)
			r.Delete("/{id}", foodHandler.Delete)
			r.Post("/{id}/favorite", foodHandler.ToggleFavorite)
		})

		r.Route("/meals", func(r chi.Router) {
			r.Get("/", mealHandler.List)
			r.Post("/", mealHandler.Create)
			r.Get("/{id}", mealHandler.Get)
			r.Put("/{id}", mealHandler.Update)
			r.Delete("/{id}", mealHandler.Delete)
			r.Post("/{id}/items", mealHandler.AddItem)
			r.Put("/{id}/items/{foodItemID}", mealHandler.SetServings)
			r.Delete("/{id}/items/{foodItemID}", mealHandler.RemoveItem)
			r.Post("/{id}/recompute", mealHandler.Recompute)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
			r.Post("/analyze", recipeHandler.Analyze)
			r.Get("/{id}", recipeHandler.Get)
			r.Put("/{id}", recipeHandler.Update)
			r.Delete("/{id}", recipeHandler.Delete)
			r.Post("/{id}/log", recipeHandler.Log)
		})

		r.Get("/stats/daily", statsHandler.Daily)
		r.Get("/stats/weekly", statsHandler.Weekly)

		r.Get("/goals", goalHandler.Get)
		r.Put("/goals", goalHandler.Put)
		r.Delete("/goals", goalHandler.Delete)

		r.Get("/tokens", tokenHandler.List)
		r.Post("/tokens", tokenHandler.Create)
		r.Delete("/tokens/{id}", tokenHandler.Delete)
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
