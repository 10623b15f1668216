package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/config"
	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/middleware"
	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/nutrition"
	"github.com/bensuskins/nutrition-hub/internal/repository"
	"github.com/bensuskins/nutrition-hub/internal/services"
	"github.com/bensuskins/nutrition-hub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubSearcher struct {
	details map[string]nutrition.ExternalFood
}

func (s *stubSearcher) SearchFoods(ctx context.Context, query string, pageSize int, page int) (fooddata.SearchPage, error) {
	var foods []nutrition.ExternalFood
	for _, food := range s.details {
		foods = append(foods, food)
	}
	return fooddata.SearchPage{TotalHits: len(foods), CurrentPage: page, TotalPages: 1, Foods: foods}, nil
}

func (s *stubSearcher) FoodDetails(ctx context.Context, fdcID string) (nutrition.ExternalFood, error) {
	food, ok := s.details[fdcID]
	if !ok {
		return nutrition.ExternalFood{}, fooddata.ErrFoodNotFound
	}
	return food, nil
}

type stubBarcodes struct {
	err error
}

func (s *stubBarcodes) LookupBarcode(ctx context.Context, code string) (nutrition.BarcodeFood, error) {
	if s.err != nil {
		return nutrition.BarcodeFood{}, s.err
	}
	return nutrition.BarcodeFood{}, fooddata.ErrProductNotFound
}

type testServer struct {
	router      chi.Router
	user        models.User
	authService *services.AuthService
	mealRepo    *repository.SQLiteMealRepository
	stats       *StatsHandler
	searcher    *stubSearcher
	barcodes    *stubBarcodes
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewAPITokenRepository(db)
	foodRepo := repository.NewFoodItemRepository(db)
	mealRepo := repository.NewMealRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	user, err := userRepo.Create(ctx, models.User{
		OIDCSubject: "sub-" + uuid.New().String(),
		Email:       "handler@example.com",
		Name:        "Handler User",
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	authService, err := services.NewAuthService(ctx, config.Config{SessionSecret: "test-secret"}, userRepo, tokenRepo)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}

	searcher := &stubSearcher{details: map[string]nutrition.ExternalFood{}}
	barcodes := &stubBarcodes{}
	mealService := services.NewMealService(mealRepo, foodRepo)
	foodService := services.NewFoodService(foodRepo, mealService, searcher, barcodes)

	foodHandler := NewFoodHandler(foodService)
	mealHandler := NewMealHandler(mealService, time.UTC)
	statsHandler := NewStatsHandler(services.NewStatsService(mealRepo, goalRepo), time.UTC)
	goalHandler := NewGoalHandler(services.NewGoalService(goalRepo))
	tokenHandler := NewTokenHandler(authService, "http://localhost:8080")
	recipeHandler := NewRecipeHandler(services.NewRecipeService(repository.NewRecipeRepository(db), foodRepo, mealService))

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
			})
		})
		r.Get("/api/foods", foodHandler.List)
		r.Post("/api/foods", foodHandler.Create)
		r.Get("/api/foods/search", foodHandler.Search)
		r.Post("/api/foods/import", foodHandler.Import)
		r.Get("/api/foods/barcode/{code}", foodHandler.Barcode)
		r.Get("/api/foods/details/{fdcID}", foodHandler.Details)
		r.Get("/api/foods/{id}", foodHandler.Get)
		r.Put("/api/foods/{id}", foodHandler.Update)
		r.Delete("/api/foods/{id}", foodHandler.Delete)
		r.Post("/api/foods/{id}/favorite", foodHandler.ToggleFavorite)

		r.Get("/api/meals", mealHandler.List)
		r.Post("/api/meals", mealHandler.Create)
		r.Get("/api/meals/{id}", mealHandler.Get)
		r.Put("/api/meals/{id}", mealHandler.Update)
		r.Delete("/api/meals/{id}", mealHandler.Delete)
		r.Post("/api/meals/{id}/items", mealHandler.AddItem)
		r.Put("/api/meals/{id}/items/{foodItemID}", mealHandler.SetServings)
		r.Delete("/api/meals/{id}/items/{foodItemID}", mealHandler.RemoveItem)
		r.Post("/api/meals/{id}/recompute", mealHandler.Recompute)

		r.Get("/api/recipes", recipeHandler.List)
		r.Post("/api/recipes", recipeHandler.Create)
		r.Post("/api/recipes/analyze", recipeHandler.Analyze)
		r.Get("/api/recipes/{id}", recipeHandler.Get)
		r.Put("/api/recipes/{id}", recipeHandler.Update)
		r.Delete("/api/recipes/{id}", recipeHandler.Delete)
		r.Post("/api/recipes/{id}/log", recipeHandler.Log)

		r.Get("/api/stats/daily", statsHandler.Daily)
		r.Get("/api/stats/weekly", statsHandler.Weekly)

		r.Get("/api/goals", goalHandler.Get)
		r.Put("/api/goals", goalHandler.Put)
		r.Delete("/api/goals", goalHandler.Delete)

		r.Get("/api/tokens", tokenHandler.List)
		r.Post("/api/tokens", tokenHandler.Create)
		r.Delete("/api/tokens/{id}", tokenHandler.Delete)
	})

	return &testServer{
		router:      router,
		user:        user,
		authService: authService,
		mealRepo:    mealRepo,
		stats:       statsHandler,
		searcher:    searcher,
		barcodes:    barcodes,
	}
}

func (server *testServer) do(t *testing.T, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	request := httptest.NewRequest(method, path, &payload)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeResponse[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.NewDecoder(recorder.Body).Decode(&value); err != nil {
		t.Fatalf("decoding response: %v\nbody: %s", err, recorder.Body.String())
	}
	return value
}

func (server *testServer) createFood(t *testing.T, name string, size float64, unit string, values models.Nutrition) models.FoodItem {
	t.Helper()
	recorder := server.do(t, http.MethodPost, "/api/foods", map[string]interface{}{
		"name":         name,
		"serving_size": size,
		"serving_unit": unit,
		"nutrition":    values,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating food %s: status %d, body: %s", name, recorder.Code, recorder.Body.String())
	}
	return decodeResponse[models.FoodItem](t, recorder)
}
