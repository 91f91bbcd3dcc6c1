package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/infrastructure/usda"
	"github.com/google/uuid"
)

// FoodCatalogConfig holds configuration for the food catalog service
type FoodCatalogConfig struct {
	CacheTTL time.Duration
}

// FoodImport is a catalog entry imported from a USDA search.
type FoodImport struct {
	Food          *domain.FoodItem `json:"food"`
	Score         float64          `json:"score"`
	MatchedTokens []string         `json:"matchedTokens"`
}

// foodDependents recomputes whatever caches totals derived from a food item.
type foodDependents interface {
	RefreshForFood(ctx context.Context, foodID uuid.UUID) (int, error)
}

// FoodCatalogService ingests USDA FoodData Central foods into the nutrient
// fact store. USDA payloads are cached; the catalog is upserted by FDC ID.
type FoodCatalogService struct {
	foods    domain.FoodRepository
	usda     domain.USDAClient
	cache    domain.CacheRepository
	cacheTTL time.Duration
	meals    foodDependents
	log      *slog.Logger
}

// NewFoodCatalogService creates a new catalog service with dependencies
func NewFoodCatalogService(
	log *slog.Logger,
	foods domain.FoodRepository,
	usdaClient domain.USDAClient,
	cache domain.CacheRepository,
	config FoodCatalogConfig,
) *FoodCatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // 30 days
	}

	return &FoodCatalogService{
		foods:    foods,
		usda:     usdaClient,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.With("service", "food_catalog"),
	}
}

// WithMealRefresh makes imports that change an existing food recompute the
// meals using it.
func (s *FoodCatalogService) WithMealRefresh(meals foodDependents) *FoodCatalogService {
	s.meals = meals
	return s
}

// Get returns a catalog entry.
func (s *FoodCatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.FoodItem, error) {
	food, err := s.foods.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return food, nil
}

// ImportByFdcID fetches a food from USDA and inserts or refreshes it in the
// catalog. A refreshed entry keeps its ID, so existing meals see new facts.
func (s *FoodCatalogService) ImportByFdcID(ctx context.Context, fdcID int) (*domain.FoodItem, error) {
	if fdcID <= 0 {
		return nil, fmt.Errorf("%w: fdcId must be positive", domain.ErrInvalidRequest)
	}

	details, err := s.foodDetails(ctx, fdcID)
	if err != nil {
		return nil, err
	}

	item := usda.MapToFoodItem(details)
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now

	existing, err := s.foods.GetByFdcID(ctx, fdcID)
	switch {
	case err == nil:
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get food by fdc id: %w", err)
	}

	if err := s.foods.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save food item: %w", err)
	}
	if existing != nil && s.meals != nil {
		n, err := s.meals.RefreshForFood(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("refresh meals for food: %w", err)
		}
		s.log.DebugContext(ctx, "meals refreshed for food", slog.String("food_id", item.ID.String()), slog.Int("meals", n))
	}

	s.log.InfoContext(ctx, "food imported",
		slog.Int("fdc_id", fdcID),
		slog.String("food_id", item.ID.String()),
		slog.Int("nutrients", len(item.Nutrients)),
		slog.Bool("refreshed", existing != nil),
	)
	return item, nil
}

// RefreshByFdcID drops the cached USDA payload for fdcID and imports the
// food again from the API.
func (s *FoodCatalogService) RefreshByFdcID(ctx context.Context, fdcID int) (*domain.FoodItem, error) {
	if fdcID <= 0 {
		return nil, fmt.Errorf("%w: fdcId must be positive", domain.ErrInvalidRequest)
	}
	key := foodCacheKey(fdcID)
	if err := s.cache.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("drop cached food %d: %w", fdcID, err)
	}
	return s.ImportByFdcID(ctx, fdcID)
}

// SearchAndImport searches USDA, picks the candidate best matching query and
// imports it.
func (s *FoodCatalogService) SearchAndImport(ctx context.Context, query string) (*FoodImport, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	results, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	match, ok := rankFoods(query, results.Foods)
	if !ok {
		s.log.InfoContext(ctx, "no usable match", slog.String("query", query), slog.Int("candidates", len(results.Foods)))
		return nil, domain.ErrProductNotFound
	}

	s.log.DebugContext(ctx, "best match",
		slog.String("query", query),
		slog.String("description", match.Food.Description),
		slog.Float64("score", match.Score),
	)

	item, err := s.ImportByFdcID(ctx, match.Food.FdcID)
	if err != nil {
		return nil, err
	}
	return &FoodImport{Food: item, Score: match.Score, MatchedTokens: match.MatchedTokens}, nil
}

func (s *FoodCatalogService) foodDetails(ctx context.Context, fdcID int) (*domain.USDAFood, error) {
	key := foodCacheKey(fdcID)

	var cached domain.USDAFood
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	details, err := s.usda.GetFoodDetails(ctx, fdcID)
	if err != nil {
		return nil, wrapUSDAError(err)
	}

	if err := s.cache.Set(ctx, key, details, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return details, nil
}

func (s *FoodCatalogService) search(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	key := "usda:search:" + normalizeForCacheKey(query)

	var cached domain.USDASearchResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached.Foods) > 0 {
		return &cached, nil
	}

	results, err := s.usda.SearchFoods(ctx, cleanQuery(query))
	if err != nil {
		return nil, wrapUSDAError(err)
	}
	if len(results.Foods) == 0 {
		return nil, domain.ErrProductNotFound
	}

	if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return results, nil
}

func foodCacheKey(fdcID int) string {
	return fmt.Sprintf("usda:food:%d", fdcID)
}

// normalizeForCacheKey lowercases, drops punctuation and collapses
// whitespace: "Rolled  Oats!" -> "rolled oats".
func normalizeForCacheKey(s string) string {
	s = punctuationRegex.ReplaceAllString(strings.ToLower(s), "")
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func wrapUSDAError(err error) error {
	if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrUSDAAPIFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
}
