package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutriapp/backend/internal/models"
	"github.com/nutriapp/backend/internal/types"
)

var ErrDishNotFound = errors.New("dish not found")

// ValidationError carries the message shown to the user on the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DishService handles dish CRUD operations
type DishService struct {
	db *gorm.DB
}

// NewDishService creates a new DishService instance
func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

// ListDishes returns all dishes ordered by creation. When search is set the
// result is ordered by embedding distance on postgres, with a keyword
// fallback for other dialects.
func (s *DishService) ListDishes(ctx context.Context, search string) ([]models.Dish, error) {
	var dishes []models.Dish

	query := s.db.WithContext(ctx)
	if search != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(search)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
				Order("created_at ASC")
		}
	} else {
		query = query.Order("created_at ASC")
	}

	if err := query.Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

// GetDish retrieves a dish by ID
func (s *DishService) GetDish(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return &dish, nil
}

// CreateDish validates the request, strips blank steps and persists a dish
// owned by the given user.
func (s *DishService) CreateDish(ctx context.Context, userID uuid.UUID, req *types.DishRequest) (*models.Dish, error) {
	if err := validateDish(req); err != nil {
		return nil, err
	}

	dish := models.Dish{
		Name:        req.Name,
		Description: req.Description,
		QuickPrep:   req.QuickPrep,
		PrepTime:    req.PrepTime,
		CookTime:    req.CookTime,
		ImageURL:    req.ImageURL,
		Steps:       filterBlankSteps(req.Steps),
		Calories:    req.Calories,
		Embedding:   GenerateEmbedding(req.Name + " " + req.Description),
		UserID:      userID,
	}

	if err := s.db.WithContext(ctx).Create(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

// UpdateDish replaces all mutable fields of an existing dish. The id and the
// owner are immutable; a dish belonging to another user reads as absent.
func (s *DishService) UpdateDish(ctx context.Context, userID, id uuid.UUID, req *types.DishRequest) (*models.Dish, error) {
	if err := validateDish(req); err != nil {
		return nil, err
	}

	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}

	dish.Name = req.Name
	dish.Description = req.Description
	dish.QuickPrep = req.QuickPrep
	dish.PrepTime = req.PrepTime
	dish.CookTime = req.CookTime
	dish.ImageURL = req.ImageURL
	dish.Steps = filterBlankSteps(req.Steps)
	dish.Calories = req.Calories
	dish.Embedding = GenerateEmbedding(req.Name + " " + req.Description)

	if err := s.db.WithContext(ctx).Save(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

// DeleteDish removes a dish by id. A repeated delete fails with
// ErrDishNotFound rather than silently succeeding.
func (s *DishService) DeleteDish(ctx context.Context, userID, id uuid.UUID) error {
	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDishNotFound
		}
		return err
	}

	return s.db.WithContext(ctx).Delete(&dish).Error
}

// SetImageURL stores the uploaded image location on the dish.
func (s *DishService) SetImageURL(ctx context.Context, userID, id uuid.UUID, url string) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}

	dish.ImageURL = url
	if err := s.db.WithContext(ctx).Save(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

func validateDish(req *types.DishRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Message: "El nombre del platillo es obligatorio"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &ValidationError{Message: "La descripción del platillo es obligatoria"}
	}
	if req.PrepTime < 0 || req.CookTime < 0 {
		return &ValidationError{Message: "Los tiempos de preparación y cocción no pueden ser negativos"}
	}
	if req.Calories != nil && *req.Calories < 0 {
		return &ValidationError{Message: "Las calorías no pueden ser negativas"}
	}
	return nil
}

// filterBlankSteps drops blank entries while preserving the order of the rest.
func filterBlankSteps(steps []string) models.StepList {
	filtered := make(models.StepList, 0, len(steps))
	for _, step := range steps {
		if strings.TrimSpace(step) != "" {
			filtered = append(filtered, step)
		}
	}
	return filtered
}
