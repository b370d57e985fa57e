package storeflavors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/keylock"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type flavorResolver interface {
	ResolveIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Service manages which catalog flavors each store sells.
type Service interface {
	// ActiveFlavors lists the catalog annotated for store. A derived store
	// with no assignments first inherits its base store's set.
	ActiveFlavors(ctx context.Context, store string) ([]StoreFlavorDTO, error)
	// SetActiveFlavors replaces the store's whole set atomically.
	SetActiveFlavors(ctx context.Context, store string, assignments []AssignmentInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	locker   keylock.Locker
	resolver flavorResolver
	derived  map[string]string
	metrics  *metrics.DomainMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a store flavors service. derived maps a derived store
// name to the base store it copies on first read.
func NewService(
	repo Repository,
	tx txRunner,
	locker keylock.Locker,
	resolver flavorResolver,
	derived map[string]string,
	domainMetrics *metrics.DomainMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store flavors repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("store locker required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("flavor resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	copied := make(map[string]string, len(derived))
	for k, v := range derived {
		copied[k] = v
	}
	return &service{
		repo:     repo,
		tx:       tx,
		locker:   locker,
		resolver: resolver,
		derived:  copied,
		metrics:  domainMetrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) ActiveFlavors(ctx context.Context, store string) ([]StoreFlavorDTO, error) {
	store = strings.TrimSpace(store)
	if store == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}
	ctx = s.logg.WithStore(ctx, store)

	if base, ok := s.derived[store]; ok {
		if err := s.bootstrap(ctx, store, base); err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.ListForStore(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store flavors")
	}
	out := make([]StoreFlavorDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// bootstrap copies base's assignments onto an empty derived store. The check
// and the copy share one critical section and one transaction so concurrent
// first reads copy at most once.
func (s *service) bootstrap(ctx context.Context, store, base string) error {
	release, err := s.locker.Lock(ctx, store)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire store lock")
	}
	defer s.release(ctx, release)

	var copied int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountByStore(ctx, store)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		copied, err = repo.CopyStore(ctx, base, store, s.now().UTC())
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bootstrap store flavors")
	}

	if copied > 0 {
		s.metrics.IncBootstrapCopy(store)
		ctx = s.logg.WithFields(ctx, map[string]any{"base_store": base, "copied": copied})
		s.logg.Info(ctx, "storeflavors.bootstrapped")
	}
	return nil
}

func (s *service) SetActiveFlavors(ctx context.Context, store string, assignments []AssignmentInput) error {
	store = strings.TrimSpace(store)
	if store == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}
	ctx = s.logg.WithStore(ctx, store)

	names, err := s.activeNames(ctx, assignments)
	if err != nil {
		return err
	}

	release, err := s.locker.Lock(ctx, store)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire store lock")
	}
	defer s.release(ctx, release)

	at := s.now().UTC()
	rows := make([]models.StoreFlavor, 0, len(names))
	for _, name := range names {
		rows = append(rows, models.StoreFlavor{StoreName: store, FlavorName: name, CreatedAt: at})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.DeleteByStore(ctx, store); err != nil {
			return err
		}
		return repo.InsertMany(ctx, rows)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace store flavors")
	}

	s.metrics.IncAssignmentsReplaced(store)
	ctx = s.logg.WithField(ctx, "active", len(rows))
	s.logg.Info(ctx, "storeflavors.replaced")
	return nil
}

// activeNames validates every entry and returns the distinct flavor names of
// the active ones, in request order. flavorName wins over flavorId.
func (s *service) activeNames(ctx context.Context, assignments []AssignmentInput) ([]string, error) {
	var ids []int64
	for i, a := range assignments {
		if a.FlavorName != nil && strings.TrimSpace(*a.FlavorName) != "" {
			continue
		}
		if a.FlavorID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "each assignment needs flavorId or flavorName").
				WithDetails(map[string]any{"index": i})
		}
		if a.isActive() {
			ids = append(ids, *a.FlavorID)
		}
	}

	resolved := map[int64]string{}
	if len(ids) > 0 {
		var err error
		resolved, err = s.resolver.ResolveIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(assignments))
	names := make([]string, 0, len(assignments))
	for i, a := range assignments {
		if !a.isActive() {
			continue
		}
		var name string
		if a.FlavorName != nil && strings.TrimSpace(*a.FlavorName) != "" {
			name = strings.TrimSpace(*a.FlavorName)
		} else {
			var ok bool
			name, ok = resolved[*a.FlavorID]
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown flavorId").
					WithDetails(map[string]any{"index": i, "flavorId": *a.FlavorID})
			}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

func (s *service) release(ctx context.Context, release keylock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logg.WarnErr(ctx, "storeflavors.lock_release_failed", err)
	}
}
