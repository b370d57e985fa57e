package catalog

import (
	"context"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines persistence operations for the flavors table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Flavor, error)
	InsertIgnore(ctx context.Context, flavors ...models.Flavor) (int64, error)
	UpdateByName(ctx context.Context, name string, updates map[string]any) (int64, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Flavor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Flavor, error) {
	var flavors []models.Flavor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&flavors).Error; err != nil {
		return nil, err
	}
	return flavors, nil
}

// InsertIgnore inserts the flavors whose names are not taken yet and reports
// how many rows were written.
func (r *repository) InsertIgnore(ctx context.Context, flavors ...models.Flavor) (int64, error) {
	if len(flavors) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&flavors)
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateByName(ctx context.Context, name string, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Flavor{}).
		Where("name = ?", name).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByName(ctx context.Context, name string) (int64, error) {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Flavor{})
	return res.RowsAffected, res.Error
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]models.Flavor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var flavors []models.Flavor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&flavors).Error; err != nil {
		return nil, err
	}
	return flavors, nil
}
