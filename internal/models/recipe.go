package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups recipes. Categories are seeded with a default set on first
// startup and are never deleted automatically.
type Category struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Ingredient is shared across all recipes that use it. Names are unique;
// lookups are case-insensitive.
type Ingredient struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Recipe struct {
	ID              uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Name            string         `gorm:"size:150;not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	Instructions    string         `gorm:"type:text;not null" json:"instructions"`
	CookTimeMinutes *int           `json:"cook_time_minutes"`
	// Servings is the baseline serving count used for shopping-list scaling.
	// Nil or zero disables scaling for this recipe.
	Servings   *int       `json:"servings"`
	Source     string     `gorm:"size:255" json:"source"`
	ImageFile  string     `gorm:"size:100" json:"image_file"`
	CategoryID *uuid.UUID `gorm:"type:varchar(36)" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient links a recipe to an ingredient with a quantity and unit.
// The composite key means an ingredient appears in a recipe at most once.
// Quantity is stored raw: it may be a number ("200"), free text ("a pinch")
// or nil. Unit is an opaque label; no conversion is ever attempted.
type RecipeIngredient struct {
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"ingredient_id"`
	Quantity     *string    `gorm:"size:50" json:"quantity"`
	Unit         *string    `gorm:"size:50" json:"unit"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
