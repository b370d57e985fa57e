package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
)

// Service exposes flavor catalog operations. Writes against unknown names
// succeed without effect.
type Service interface {
	List(ctx context.Context) ([]FlavorDTO, error)
	Add(ctx context.Context, input AddInput) error
	Update(ctx context.Context, name string, input UpdateInput) error
	Delete(ctx context.Context, name string) error
	SeedDefaults(ctx context.Context) (int64, error)
	ResolveIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a catalog service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]FlavorDTO, error) {
	flavors, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list flavors")
	}
	out := make([]FlavorDTO, 0, len(flavors))
	for _, f := range flavors {
		out = append(out, FromModel(f))
	}
	return out, nil
}

func (s *service) Add(ctx context.Context, input AddInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Name and price required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	inserted, err := s.repo.InsertIgnore(ctx, models.Flavor{Name: name, Price: *input.Price, Active: true})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add flavor")
	}
	if inserted == 0 {
		ctx = s.logg.WithField(ctx, "flavor", name)
		s.logg.Debug(ctx, "catalog.add_ignored_duplicate")
	}
	return nil
}

func (s *service) Update(ctx context.Context, name string, input UpdateInput) error {
	updates := map[string]any{}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
		}
		updates["price"] = *input.Price
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "No fields to update")
	}

	affected, err := s.repo.UpdateByName(ctx, name, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update flavor")
	}
	if affected == 0 {
		ctx = s.logg.WithField(ctx, "flavor", name)
		s.logg.Debug(ctx, "catalog.update_unknown_flavor")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.DeleteByName(ctx, name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete flavor")
	}
	return nil
}

// SeedDefaults installs the default menu, leaving existing flavors untouched.
func (s *service) SeedDefaults(ctx context.Context) (int64, error) {
	rows := make([]models.Flavor, 0, len(DefaultFlavors))
	for _, name := range DefaultFlavors {
		rows = append(rows, models.Flavor{Name: name, Price: DefaultPrice, Active: true})
	}
	inserted, err := s.repo.InsertIgnore(ctx, rows...)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed default flavors")
	}
	ctx = s.logg.WithField(ctx, "inserted", inserted)
	s.logg.Info(ctx, "catalog.seeded")
	return inserted, nil
}

// ResolveIDs maps surrogate flavor ids to names. Unknown ids are absent from
// the result.
func (s *service) ResolveIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	flavors, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve flavor ids")
	}
	out := make(map[int64]string, len(flavors))
	for _, f := range flavors {
		out[f.ID] = f.Name
	}
	return out, nil
}
