package storeflavors

import (
	"context"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyStoreSQL = `INSERT INTO store_flavors (store_name, flavor_name, created_at)
SELECT ?, flavor_name, ? FROM store_flavors WHERE store_name = ?
ON CONFLICT (store_name, flavor_name) DO NOTHING`

const listForStoreSQL = `SELECT f.id, f.name, f.price, f.active, f.created_at,
  CASE WHEN sf.flavor_name IS NOT NULL THEN 1 ELSE 0 END AS store_active
FROM flavors f
LEFT JOIN store_flavors sf ON sf.flavor_name = f.name AND sf.store_name = ?
ORDER BY f.name ASC`

// Repository defines persistence operations for store_flavors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountByStore(ctx context.Context, store string) (int64, error)
	CopyStore(ctx context.Context, from, to string, at time.Time) (int64, error)
	DeleteByStore(ctx context.Context, store string) (int64, error)
	InsertMany(ctx context.Context, rows []models.StoreFlavor) error
	ListForStore(ctx context.Context, store string) ([]FlavorRow, error)
}

// FlavorRow is a catalog flavor annotated with one store's activation.
type FlavorRow struct {
	models.Flavor
	StoreActive int `gorm:"column:store_active"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a store flavors repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CountByStore(ctx context.Context, store string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreFlavor{}).
		Where("store_name = ?", store).
		Count(&count).Error
	return count, err
}

// CopyStore duplicates every assignment of from onto to, skipping pairs that
// already exist.
func (r *repository) CopyStore(ctx context.Context, from, to string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(copyStoreSQL, to, at, from)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByStore(ctx context.Context, store string) (int64, error) {
	res := r.db.WithContext(ctx).Where("store_name = ?", store).Delete(&models.StoreFlavor{})
	return res.RowsAffected, res.Error
}

func (r *repository) InsertMany(ctx context.Context, rows []models.StoreFlavor) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_name"}, {Name: "flavor_name"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *repository) ListForStore(ctx context.Context, store string) ([]FlavorRow, error) {
	var rows []FlavorRow
	if err := r.db.WithContext(ctx).Raw(listForStoreSQL, store).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
