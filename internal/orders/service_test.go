package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/icecream-backend/pkg/db"
	"github.com/angelmondragon/icecream-backend/pkg/db/dbtest"
	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"github.com/angelmondragon/icecream-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
	"github.com/angelmondragon/icecream-backend/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	client *db.Client
	svc    Service
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.New(t)
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(client.DB()), client, metrics.NewDomainMetrics(reg), logg, 20)
	require.NoError(t, err)
	return fixture{client: client, svc: svc, reg: reg}
}

func money(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(v string) *string { return &v }

func item(flavor string, qty int, price string) ItemInput {
	return ItemInput{Flavor: flavor, Quantity: qty, Price: money(price)}
}

func desc(limit int) pagination.Params {
	return pagination.Params{Limit: limit, Direction: enums.SortDesc}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	_, err := NewService(nil, nil, nil, logg, 0)
	require.Error(t, err)

	client := dbtest.New(t)
	_, err = NewService(NewRepository(client.DB()), nil, nil, logg, 0)
	require.Error(t, err)

	_, err = NewService(NewRepository(client.DB()), client, nil, nil, 0)
	require.Error(t, err)
}

func TestCreateAndListItemsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, CreateOrderInput{
		Items:           []ItemInput{item("Fresa", 2, "12"), item("Mango", 1, "12.5")},
		Total:           money("36.5"),
		Subtotal:        money("36.5"),
		Discount:        money("0"),
		Customer:        strPtr("Ana"),
		Store:           strPtr("puesto"),
		ClientTimestamp: strPtr("2024-05-01T10:00:00-06:00"),
	})
	require.NoError(t, err)
	assert.Positive(t, res.ID)
	assert.Equal(t, "Order saved successfully", res.Message)

	orders, err := f.svc.List(ctx, desc(0), ListOptions{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0]
	assert.Equal(t, res.ID, got.ID)
	assert.NotEmpty(t, got.Timestamp)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("36.5")))
	require.NotNil(t, got.Discount)
	assert.True(t, got.Discount.IsZero())
	assert.Equal(t, "Ana", *got.Customer)
	assert.Equal(t, "puesto", *got.Store)
	assert.Equal(t, "2024-05-01T10:00:00-06:00", *got.ClientTimestamp)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Fresa", got.Items[0].Flavor)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[1].Price.Equal(decimal.RequireFromString("12.5")))

	assert.Equal(t, 1.0, counterSum(t, f.reg, "orders_created_total"))
}

func TestCreateFromCupsStoresRowsAndBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cups := json.RawMessage(`[ {"items": {"s2": {"flavor":"Mango","quantity":1,"price":12}, "s1": {"flavor":"Fresa","quantity":1,"price":12}}} ]`)
	_, err := f.svc.Create(ctx, CreateOrderInput{Cups: cups, Total: money("24")})
	require.NoError(t, err)

	var rows []models.OrderItem
	require.NoError(t, f.client.DB().Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fresa", rows[0].Flavor)
	assert.Equal(t, "Mango", rows[1].Flavor)

	orders, err := f.svc.List(ctx, desc(0), ListOptions{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
	assert.JSONEq(t, string(cups), string(orders[0].Cups))
}

func TestCreateCupsTakePrecedenceOverItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cups := json.RawMessage(`[{"items":{"a":{"flavor":"Mango","quantity":2,"price":12}}},{"items":{"b":{"flavor":"Tuna","quantity":1,"price":12}}}]`)
	_, err := f.svc.Create(ctx, CreateOrderInput{
		Items: []ItemInput{item("Fresa", 1, "12")},
		Cups:  cups,
		Total: money("36"),
	})
	require.NoError(t, err)

	orders, err := f.svc.List(ctx, desc(0), ListOptions{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Mango", orders[0].Items[0].Flavor)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, "Tuna", orders[0].Items[1].Flavor)
}

func TestCreateTicketOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderInput{Ticket: strPtr("Fresa 1 - - - $12.00"), Total: money("12")})
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, f.client.DB().First(&stored).Error)
	assert.Equal(t, enums.OrderRepresentationTicket, stored.Representation)

	plain, err := f.svc.List(ctx, desc(0), ListOptions{})
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.NotNil(t, plain[0].Items)
	assert.Empty(t, plain[0].Items)

	recovered, err := f.svc.List(ctx, desc(0), ListOptions{TicketFallback: true})
	require.NoError(t, err)
	require.Len(t, recovered[0].Items, 1)
	assert.Equal(t, "Fresa", recovered[0].Items[0].Flavor)
	assert.Equal(t, 1.0, counterSum(t, f.reg, "order_ticket_lines_total"))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateOrderInput
	}{
		{name: "missing total", input: CreateOrderInput{Items: []ItemInput{item("Fresa", 1, "12")}}},
		{name: "blank flavor", input: CreateOrderInput{Items: []ItemInput{item(" ", 1, "12")}, Total: money("12")}},
		{name: "zero quantity", input: CreateOrderInput{Items: []ItemInput{item("Fresa", 0, "12")}, Total: money("12")}},
		{name: "negative price", input: CreateOrderInput{Items: []ItemInput{item("Fresa", 1, "-1")}, Total: money("12")}},
		{name: "missing price", input: CreateOrderInput{Items: []ItemInput{{Flavor: "Fresa", Quantity: 1}}, Total: money("12")}},
		{name: "cups not a list", input: CreateOrderInput{Cups: json.RawMessage(`{"a":1}`), Total: money("12")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRollsBackHeaderWhenItemsFail(t *testing.T) {
	client := dbtest.New(t)
	logg := logger.New(logger.Options{Output: io.Discard})
	svc, err := NewService(failingItemsRepo{Repository: NewRepository(client.DB())}, client, nil, logg, 20)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrderInput{
		Items: []ItemInput{item("Fresa", 1, "12")},
		Total: money("12"),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Contains(t, typed.PublicMessage(), "disk full")

	var count int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListOrderingAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		res, err := f.svc.Create(ctx, CreateOrderInput{
			Items: []ItemInput{item("Fresa", 1, "12"), item("Mango", 1, "12")},
			Total: money("24"),
		})
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	newest, err := f.svc.List(ctx, desc(2), ListOptions{})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, ids[4], newest[0].ID)
	assert.Equal(t, ids[3], newest[1].ID)
	assert.Len(t, newest[0].Items, 2)

	oldest, err := f.svc.List(ctx, pagination.Params{Limit: 1000, Direction: enums.SortAsc}, ListOptions{})
	require.NoError(t, err)
	require.Len(t, oldest, 5)
	assert.Equal(t, ids[0], oldest[0].ID)
	assert.Equal(t, ids[4], oldest[4].ID)
}

func TestListDefaultLimit(t *testing.T) {
	client := dbtest.New(t)
	logg := logger.New(logger.Options{Output: io.Discard})
	svc, err := NewService(NewRepository(client.DB()), client, nil, logg, 3)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := svc.Create(context.Background(), CreateOrderInput{Total: money("1")})
		require.NoError(t, err)
	}
	orders, err := svc.List(context.Background(), pagination.Params{}, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestListResolvesLegacyCupsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blob := `[{"items":{"x":{"flavor":"Nuez","quantity":3,"price":12}}}]`
	broken := `[{"items":`
	require.NoError(t, f.client.DB().Create(&models.Order{
		Representation: enums.OrderRepresentationCups,
		Total:          decimal.NewFromInt(36),
		Cups:           &blob,
	}).Error)
	require.NoError(t, f.client.DB().Create(&models.Order{
		Representation: enums.OrderRepresentationCups,
		Total:          decimal.NewFromInt(12),
		Cups:           &broken,
		Ticket:         strPtr("Coco 1 - - - $12.00"),
	}).Error)

	orders, err := f.svc.List(ctx, pagination.Params{Direction: enums.SortAsc}, ListOptions{})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Nuez", orders[0].Items[0].Flavor)
	assert.Equal(t, 3, orders[0].Items[0].Quantity)

	assert.Empty(t, orders[1].Items)
	assert.Nil(t, orders[1].Cups)
	assert.Equal(t, 1.0, counterSum(t, f.reg, "order_malformed_cups_total"))

	withFallback, err := f.svc.List(ctx, pagination.Params{Direction: enums.SortAsc}, ListOptions{TicketFallback: true})
	require.NoError(t, err)
	require.Len(t, withFallback[1].Items, 1)
	assert.Equal(t, "Coco", withFallback[1].Items[0].Flavor)
}

func TestListFallbackIgnoredWhenItemsExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderInput{
		Items:  []ItemInput{item("Fresa", 1, "12")},
		Ticket: strPtr("Mango 4 - - - $48.00"),
		Total:  money("12"),
	})
	require.NoError(t, err)

	orders, err := f.svc.List(ctx, desc(0), ListOptions{TicketFallback: true})
	require.NoError(t, err)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Fresa", orders[0].Items[0].Flavor)
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

type failingItemsRepo struct {
	Repository
}

func (r failingItemsRepo) WithTx(tx *gorm.DB) Repository {
	return failingItemsRepo{Repository: r.Repository.WithTx(tx)}
}

func (failingItemsRepo) CreateItems(context.Context, []models.OrderItem) error {
	return errors.New("disk full")
}
