package services

import (
	"errors"
	"strings"

	"wordrush/models"

	"gorm.io/gorm"
)

// CategoryService manages user-authored word categories. A custom category
// becomes playable by naming it in a session's config; the session service
// merges it into the word bank at session creation.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CreateCategoryRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Words       []string `json:"words" binding:"required,min=4"`
}

type UpdateCategoryRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Words       []string `json:"words"`
}

func (s *CategoryService) CreateCategory(userID uint, req *CreateCategoryRequest) (*models.Category, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, errors.New("category name required")
	}

	words := normalizeWords(req.Words)
	if len(words) < 4 {
		return nil, errors.New("a category needs at least 4 distinct words")
	}

	var existing models.Category
	if err := s.db.Where("user_id = ? AND LOWER(name) = ?", userID, name).First(&existing).Error; err == nil {
		return nil, errors.New("category name already taken")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	category := models.Category{
		UserID:      userID,
		Name:        name,
		Description: req.Description,
	}
	if err := tx.Create(&category).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for i, word := range words {
		row := models.CategoryWord{
			CategoryID: category.ID,
			Word:       word,
			Order:      i + 1,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetCategoryByID(category.ID, userID)
}

func (s *CategoryService) GetUserCategories(userID uint) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("user_id = ?", userID).
		Preload("Words", func(db *gorm.DB) *gorm.DB {
			return db.Order("category_words.order")
		}).
		Order("created_at DESC").
		Find(&categories).Error
	return categories, err
}

func (s *CategoryService) GetCategoryByID(categoryID uint, userID uint) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).
		Preload("Words", func(db *gorm.DB) *gorm.DB {
			return db.Order("category_words.order")
		}).
		First(&category).Error
	return &category, err
}

func (s *CategoryService) UpdateCategory(categoryID uint, userID uint, req *UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategoryByID(categoryID, userID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if req.Name != "" {
		category.Name = strings.ToLower(strings.TrimSpace(req.Name))
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if err := tx.Save(category).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if req.Words != nil {
		words := normalizeWords(req.Words)
		if len(words) < 4 {
			tx.Rollback()
			return nil, errors.New("a category needs at least 4 distinct words")
		}

		if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryWord{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for i, word := range words {
			row := models.CategoryWord{
				CategoryID: categoryID,
				Word:       word,
				Order:      i + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetCategoryByID(categoryID, userID)
}

func (s *CategoryService) DeleteCategory(categoryID uint, userID uint) error {
	category, err := s.GetCategoryByID(categoryID, userID)
	if err != nil {
		return errors.New("category not found")
	}

	tx := s.db.Begin()
	if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryWord{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(category).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func normalizeWords(words []string) []string {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]bool)
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		cleaned = append(cleaned, word)
	}
	return cleaned
}
