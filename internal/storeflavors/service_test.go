package storeflavors

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/icecream-backend/internal/catalog"
	"github.com/angelmondragon/icecream-backend/pkg/db"
	"github.com/angelmondragon/icecream-backend/pkg/db/dbtest"
	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/keylock"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	client  *db.Client
	catalog catalog.Service
	svc     Service
	reg     *prometheus.Registry
}

func newFixture(t *testing.T, flavors ...string) fixture {
	t.Helper()
	client := dbtest.New(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	cat, err := catalog.NewService(catalog.NewRepository(client.DB()), logg)
	require.NoError(t, err)
	for _, name := range flavors {
		p := decimal.NewFromInt(12)
		require.NoError(t, cat.Add(context.Background(), catalog.AddInput{Name: name, Price: &p}))
	}

	reg := prometheus.NewRegistry()
	svc, err := NewService(
		NewRepository(client.DB()),
		client,
		keylock.NewLocal(),
		cat,
		map[string]string{"puesto2": "puesto"},
		metrics.NewDomainMetrics(reg),
		logg,
	)
	require.NoError(t, err)
	return fixture{client: client, catalog: cat, svc: svc, reg: reg}
}

func named(names ...string) []AssignmentInput {
	out := make([]AssignmentInput, 0, len(names))
	for _, n := range names {
		n := n
		out = append(out, AssignmentInput{FlavorName: &n})
	}
	return out
}

func activeSet(rows []StoreFlavorDTO) []string {
	var out []string
	for _, r := range rows {
		if r.StoreActive == 1 {
			out = append(out, r.Name)
		}
	}
	return out
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	_, err := NewService(nil, stubTx{}, keylock.NewLocal(), stubResolver{}, nil, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), nil, keylock.NewLocal(), stubResolver{}, nil, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), stubTx{}, nil, stubResolver{}, nil, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), stubTx{}, keylock.NewLocal(), nil, nil, nil, logg)
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), stubTx{}, keylock.NewLocal(), stubResolver{}, nil, nil, nil)
	require.Error(t, err)
}

func TestActiveFlavorsAnnotatesWholeCatalog(t *testing.T) {
	f := newFixture(t, "Mango", "Coco", "Fresa")
	ctx := context.Background()

	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango")))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Coco", "Fresa", "Mango"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
	assert.Equal(t, []string{"Mango"}, activeSet(rows))
	assert.True(t, rows[2].Price.Equal(decimal.NewFromInt(12)))
	assert.True(t, rows[2].Active)
}

func TestDerivedStoreBootstrapsFromBaseOnce(t *testing.T) {
	f := newFixture(t, "Mango", "Coco", "Fresa")
	ctx := context.Background()

	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango", "Coco")))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mango", "Coco"}, activeSet(rows))

	// Later changes to the base store do not leak into the derived one.
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Fresa")))
	rows, err = f.svc.ActiveFlavors(ctx, "puesto2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mango", "Coco"}, activeSet(rows))

	assert.Equal(t, 1.0, counterSum(t, f.reg, "store_flavor_bootstrap_copies_total"))
}

func TestDerivedStoreWithOwnAssignmentsIsNotOverwritten(t *testing.T) {
	f := newFixture(t, "Mango", "Coco")
	ctx := context.Background()

	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango")))
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto2", named("Coco")))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Coco"}, activeSet(rows))
}

func TestNonDerivedStoreNeverCopies(t *testing.T) {
	f := newFixture(t, "Mango")
	ctx := context.Background()
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango")))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto3")
	require.NoError(t, err)
	assert.Empty(t, activeSet(rows))
}

func TestConcurrentFirstReadsCopyExactlyOnce(t *testing.T) {
	f := newFixture(t, "Mango", "Coco", "Fresa")
	ctx := context.Background()
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango", "Coco", "Fresa")))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := f.svc.ActiveFlavors(ctx, "puesto2")
			if err != nil {
				errs <- err
				return
			}
			if len(activeSet(rows)) != 3 {
				errs <- errors.New("reader observed a partial copy")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, f.client.Raw(ctx, "SELECT count(*) FROM store_flavors WHERE store_name = ?", "puesto2").Scan(&count).Error)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, 1.0, counterSum(t, f.reg, "store_flavor_bootstrap_copies_total"))
}

func TestSetActiveFlavorsIsFullReplace(t *testing.T) {
	f := newFixture(t, "Mango", "Coco", "Fresa")
	ctx := context.Background()

	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango", "Coco")))
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Fresa")))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresa"}, activeSet(rows))

	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", nil))
	rows, err = f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	assert.Empty(t, activeSet(rows))
}

func TestSetActiveFlavorsResolvesIDsAndSkipsInactive(t *testing.T) {
	f := newFixture(t, "Mango", "Coco", "Fresa")
	ctx := context.Background()

	all, err := f.catalog.List(ctx)
	require.NoError(t, err)
	ids := map[string]int64{}
	for _, fl := range all {
		ids[fl.Name] = fl.ID
	}

	mangoID, cocoID := ids["Mango"], ids["Coco"]
	off := false
	on := true
	fresa := "Fresa"
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", []AssignmentInput{
		{FlavorID: &mangoID},
		{FlavorID: &cocoID, Active: &off},
		{FlavorName: &fresa, Active: &on},
		{FlavorName: &fresa},
	}))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mango", "Fresa"}, activeSet(rows))
}

func TestSetActiveFlavorsValidation(t *testing.T) {
	f := newFixture(t, "Mango")
	ctx := context.Background()
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango")))

	unknown := int64(424242)
	cases := [][]AssignmentInput{
		{{}},
		{{FlavorID: &unknown}},
	}
	for _, input := range cases {
		err := f.svc.SetActiveFlavors(ctx, "puesto", input)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}

	err := f.svc.SetActiveFlavors(ctx, "  ", named("Mango"))
	require.Error(t, err)

	// A rejected request leaves the previous set in place.
	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mango"}, activeSet(rows))
}

func TestReplaceRollsBackOnInsertFailure(t *testing.T) {
	f := newFixture(t, "Mango", "Coco")
	ctx := context.Background()
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango")))

	failing := &service{
		repo:     failingInsertRepo{Repository: NewRepository(f.client.DB())},
		tx:       f.client,
		locker:   keylock.NewLocal(),
		resolver: f.catalog,
		derived:  map[string]string{},
		logg:     logger.New(logger.Options{Output: io.Discard}),
		now:      time.Now,
	}
	err := failing.SetActiveFlavors(ctx, "puesto", named("Coco"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mango"}, activeSet(rows))
}

func TestDanglingAssignmentsAreInvisible(t *testing.T) {
	f := newFixture(t, "Mango", "Coco")
	ctx := context.Background()
	require.NoError(t, f.svc.SetActiveFlavors(ctx, "puesto", named("Mango", "Coco")))

	require.NoError(t, f.catalog.Delete(ctx, "Mango"))

	rows, err := f.svc.ActiveFlavors(ctx, "puesto")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Coco"}, activeSet(rows))
}

func TestLockFailureIsDependencyError(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	svc, err := NewService(NewRepository(nil), stubTx{}, failingLocker{}, stubResolver{}, map[string]string{"puesto2": "puesto"}, nil, logg)
	require.NoError(t, err)

	_, err = svc.ActiveFlavors(context.Background(), "puesto2")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

type failingInsertRepo struct {
	Repository
}

func (r failingInsertRepo) WithTx(tx *gorm.DB) Repository {
	return failingInsertRepo{Repository: r.Repository.WithTx(tx)}
}

func (failingInsertRepo) InsertMany(context.Context, []models.StoreFlavor) error {
	return errors.New("disk full")
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubResolver struct{}

func (stubResolver) ResolveIDs(context.Context, []int64) (map[int64]string, error) {
	return map[int64]string{}, nil
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (keylock.Release, error) {
	return nil, keylock.ErrTimeout
}
