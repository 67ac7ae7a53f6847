package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/auth"
	"github.com/dukerupert/pantrypal/internal/config"
	"github.com/dukerupert/pantrypal/internal/handler"
	"github.com/dukerupert/pantrypal/internal/metrics"
	"github.com/dukerupert/pantrypal/internal/middleware"
	"github.com/dukerupert/pantrypal/internal/service"
	ws "github.com/dukerupert/pantrypal/internal/websocket"
)

type Server struct {
	hub         *ws.Hub
	svc         *service.Services
	authH       *handler.AuthHandler
	groupH      *handler.GroupHandler
	productH    *handler.ProductHandler
	pantryH     *handler.PantryHandler
	listH       *handler.ShoppingListHandler
	recipeH     *handler.RecipeHandler
	mealH       *handler.MealHandler
	tokens      *auth.TokenIssuer
	metrics     *metrics.Metrics
	authLimiter *middleware.Limiter
	apiLimiter  *middleware.Limiter
	cfg         config.Config
	logger      *slog.Logger
}

func New(cfg config.Config, svc *service.Services, hub *ws.Hub, tokens *auth.TokenIssuer, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		hub:         hub,
		svc:         svc,
		authH:       handler.NewAuthHandler(svc.Auth, logger.With("component", "auth")),
		groupH:      handler.NewGroupHandler(svc.Groups, logger.With("component", "group")),
		productH:    handler.NewProductHandler(svc.Products, logger.With("component", "product")),
		pantryH:     handler.NewPantryHandler(svc.Pantries, svc.PantryProducts, logger.With("component", "pantry")),
		listH:       handler.NewShoppingListHandler(svc.ShoppingLists, svc.ShoppingListProducts, logger.With("component", "shopping_list")),
		recipeH:     handler.NewRecipeHandler(svc.Recipes, logger.With("component", "recipe")),
		mealH:       handler.NewMealHandler(svc.Meals, logger.With("component", "meal")),
		tokens:      tokens,
		metrics:     m,
		authLimiter: middleware.NewLimiter(cfg.RateLimit, cfg.RateWindow),
		apiLimiter:  middleware.NewLimiter(cfg.APIRateLimit, cfg.RateWindow),
		cfg:         cfg,
		logger:      logger,
	}
}

// SweepRateLimits drops expired rate limit buckets.
func (s *Server) SweepRateLimits() {
	s.authLimiter.Sweep()
	s.apiLimiter.Sweep()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))

	// Everything else needs a bearer token
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	apiLimit := middleware.RateLimit(s.apiLimiter, middleware.ByCaller)
	outerMux.Handle("/", authMiddleware(apiLimit(protectedMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"), s.metrics)(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.authLimiter, middleware.ByIP)(h).ServeHTTP
}

// groupLookup resolves the websocket caller's groups at connect time.
func (s *Server) groupLookup(ctx context.Context) (string, []int64, error) {
	email := auth.Email(ctx)
	user, err := s.svc.Auth.Me(ctx, email)
	if err != nil {
		return "", nil, err
	}
	return email, user.GroupIDs(), nil
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Groups
	mux.HandleFunc("POST /api/groups", s.groupH.Create)
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("GET /api/groups/{id}", s.groupH.Get)
	mux.HandleFunc("PATCH /api/groups/{id}", s.groupH.Update)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Delete)
	mux.HandleFunc("POST /api/groups/{id}/users", s.groupH.AddUser)
	mux.HandleFunc("DELETE /api/groups/{id}/users/{user_id}", s.groupH.RemoveUser)
	mux.HandleFunc("POST /api/groups/{id}/authorities", s.groupH.AssignAuthorities)
	mux.HandleFunc("DELETE /api/groups/{id}/authorities", s.groupH.RemoveAuthorities)

	// Products
	mux.HandleFunc("GET /api/products", s.productH.Search)

	// Pantries
	mux.HandleFunc("POST /api/pantries", s.pantryH.Create)
	mux.HandleFunc("GET /api/pantries", s.pantryH.List)
	mux.HandleFunc("GET /api/pantries/{id}", s.pantryH.Get)
	mux.HandleFunc("PATCH /api/pantries/{id}", s.pantryH.Update)
	mux.HandleFunc("DELETE /api/pantries/{id}", s.pantryH.Delete)
	mux.HandleFunc("GET /api/pantries/{id}/products", s.pantryH.ListProducts)
	mux.HandleFunc("POST /api/pantries/{id}/products", s.pantryH.AddProducts)
	mux.HandleFunc("PATCH /api/pantries/{id}/products", s.pantryH.UpdateProducts)
	mux.HandleFunc("DELETE /api/pantries/{id}/products", s.pantryH.DeleteProducts)
	mux.HandleFunc("PATCH /api/pantries/{id}/products/{product_id}/reserve", s.pantryH.ReserveProduct)

	// Shopping lists
	mux.HandleFunc("POST /api/shopping-lists", s.listH.Create)
	mux.HandleFunc("GET /api/shopping-lists", s.listH.List)
	mux.HandleFunc("GET /api/shopping-lists/{id}", s.listH.Get)
	mux.HandleFunc("PATCH /api/shopping-lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}", s.listH.Delete)
	mux.HandleFunc("GET /api/shopping-lists/{id}/products", s.listH.ListProducts)
	mux.HandleFunc("POST /api/shopping-lists/{id}/products", s.listH.AddProducts)
	mux.HandleFunc("PATCH /api/shopping-lists/{id}/products", s.listH.UpdateProduct)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}/products", s.listH.RemoveProducts)
	mux.HandleFunc("PATCH /api/shopping-lists/{id}/products/purchase", s.listH.TogglePurchased)
	mux.HandleFunc("POST /api/shopping-lists/{id}/products/transfer", s.listH.TransferToPantry)
	mux.HandleFunc("POST /api/shopping-lists/{id}/recipes/{recipe_id}", s.listH.AddRecipe)

	// Recipes
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("GET /api/recipes/mine", s.recipeH.Mine)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("PUT /api/recipes/{id}/image", s.recipeH.SetImage)
	mux.HandleFunc("GET /api/recipes/{id}/image", s.recipeH.Image)

	// Meals
	mux.HandleFunc("POST /api/meals", s.mealH.Add)
	mux.HandleFunc("GET /api/meals", s.mealH.List)
	mux.HandleFunc("PATCH /api/meals/{id}", s.mealH.Update)
	mux.HandleFunc("DELETE /api/meals/{id}", s.mealH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.groupLookup, s.cfg.Origins))
}
