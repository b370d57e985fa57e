package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/db/models"
	"github.com/angelmondragon/icecream-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/icecream-backend/pkg/errors"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
	"github.com/angelmondragon/icecream-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const savedMessage = "Order saved successfully"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records sales and returns them in canonical form.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateResult, error)
	List(ctx context.Context, params pagination.Params, opts ListOptions) ([]OrderDTO, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	metrics      *metrics.DomainMetrics
	logg         *logger.Logger
	defaultLimit int
}

// NewService builds an orders service. defaultLimit applies when List gets a
// non-positive limit.
func NewService(repo Repository, tx txRunner, domainMetrics *metrics.DomainMetrics, logg *logger.Logger, defaultLimit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		metrics:      domainMetrics,
		logg:         logg,
		defaultLimit: pagination.NormalizeLimit(defaultLimit, pagination.DefaultLimit),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateResult, error) {
	if input.Total == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total required").
			WithDetails(map[string]string{"total": "required"})
	}

	lines := input.Items
	var cupsBlob *string
	if !isNullJSON(input.Cups) {
		flat, err := flattenCups(input.Cups)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cups").
				WithDetails(map[string]string{"cups": err.Error()})
		}
		compacted, err := compactJSON(input.Cups)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cups")
		}
		cupsBlob = &compacted
		lines = flat
	}

	if details := validateLines(lines); len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order items").WithDetails(details)
	}

	order := models.Order{
		Representation:  enums.OrderRepresentationItems,
		ClientTimestamp: nonBlank(input.ClientTimestamp),
		Customer:        nonBlank(input.Customer),
		Store:           nonBlank(input.Store),
		Subtotal:        nullDecimal(input.Subtotal),
		Discount:        nullDecimal(input.Discount),
		Total:           *input.Total,
		Ticket:          nonBlank(input.Ticket),
		Cups:            cupsBlob,
	}
	if len(lines) == 0 && order.Ticket != nil {
		order.Representation = enums.OrderRepresentationTicket
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		rows := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, models.OrderItem{
				OrderID:  order.ID,
				Flavor:   strings.TrimSpace(line.Flavor),
				Quantity: line.Quantity,
				Price:    *line.Price,
			})
		}
		if err := repo.CreateItems(ctx, rows); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}

	s.metrics.IncOrderCreated(order.Representation.String())
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID,
		"representation": order.Representation.String(),
		"items":          len(lines),
	}), "order saved")

	return &CreateResult{ID: order.ID, Message: savedMessage}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, opts ListOptions) ([]OrderDTO, error) {
	params = params.Normalize(s.defaultLimit)
	stored, err := s.repo.ListWithItems(ctx, params.Limit, params.Direction)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	out := make([]OrderDTO, 0, len(stored))
	for _, so := range stored {
		out = append(out, s.canonical(ctx, so, opts))
	}
	return out, nil
}

func (s *service) canonical(ctx context.Context, so StoredOrder, opts ListOptions) OrderDTO {
	o := so.Order
	dto := OrderDTO{
		ID:              o.ID,
		Timestamp:       o.CreatedAt.UTC().Format(time.RFC3339),
		ClientTimestamp: o.ClientTimestamp,
		Customer:        o.Customer,
		Store:           o.Store,
		Subtotal:        decimalPtr(o.Subtotal),
		Discount:        decimalPtr(o.Discount),
		Total:           o.Total,
		Ticket:          o.Ticket,
	}
	if o.Cups != nil && json.Valid([]byte(*o.Cups)) {
		dto.Cups = json.RawMessage(*o.Cups)
	}

	rep := representationOf(so)
	items, err := rep.items()
	if err != nil {
		s.metrics.IncMalformedCups()
		s.logg.WarnErr(s.logg.WithFields(ctx, map[string]any{
			"order_id":       o.ID,
			"representation": rep.kind().String(),
		}), "stored order items unreadable", err)
		items = nil
	}

	if len(items) == 0 && opts.TicketFallback && o.Ticket != nil && strings.TrimSpace(*o.Ticket) != "" {
		recovered, skipped := parseTicket(*o.Ticket)
		s.metrics.AddTicketLines(len(recovered), skipped)
		items = recovered
	}

	if items == nil {
		items = []ItemDTO{}
	}
	dto.Items = items
	return dto
}

func validateLines(lines []ItemInput) map[string]string {
	details := map[string]string{}
	for i, line := range lines {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(line.Flavor) == "" {
			details[prefix+".flavor"] = "required"
		}
		if line.Quantity <= 0 {
			details[prefix+".quantity"] = "must be positive"
		}
		switch {
		case line.Price == nil:
			details[prefix+".price"] = "required"
		case line.Price.IsNegative():
			details[prefix+".price"] = "must be non-negative"
		}
	}
	return details
}

func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
