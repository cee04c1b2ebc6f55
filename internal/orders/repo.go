package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	"github.com/jmtolibas/cafeline-backend/pkg/pagination"
)

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status *enums.OrderStatus
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor *string
}

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	HighestCodeForPrefix(ctx context.Context, prefix string) (string, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertLine(ctx context.Context, line *models.OrderLine) error
	InsertOptions(ctx context.Context, options []models.OrderOption) error
	FindByCode(ctx context.Context, code string) (*models.Order, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Order, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, code string, status enums.OrderStatus) error
	UpdateContact(ctx context.Context, code string, email, phone *string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// likeEscaper neutralizes LIKE metacharacters in customer-name-derived
// prefixes so a name containing % or _ cannot match foreign codes.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// HighestCodeForPrefix returns the order code with the highest sequence for
// the given prefix, or empty when none exists. Longer codes sort first so a
// sequence that grew past three digits still wins over 999. The allocator
// reads this before every insert attempt so concurrent checkouts converge on
// distinct sequence numbers.
func (r *repository) HighestCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("order_code").
		Where(`order_code LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Order("length(order_code) DESC").
		Order("order_code DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return order.OrderCode, nil
}

func (r *repository) InsertOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) InsertLine(ctx context.Context, line *models.OrderLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) InsertOptions(ctx context.Context, options []models.OrderOption) error {
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Lines.Options").
		Where("order_code = ?", code).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByCodes(ctx context.Context, codes []string) ([]models.Order, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("order_code IN ?", codes).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerUserID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND order_code < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.Code,
		)
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC").
		Order("order_code DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next := pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			Code:      last.OrderCode,
		})
		list.NextCursor = &next
	}
	list.Orders = orders
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, code string, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_code = ?", code).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateContact backfills missing contact details without touching ones that
// are already present.
func (r *repository) UpdateContact(ctx context.Context, code string, email, phone *string) error {
	updates := map[string]any{}
	if email != nil {
		updates["customer_email"] = *email
	}
	if phone != nil {
		updates["customer_phone"] = *phone
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_code = ?", code).
		Updates(updates).Error
}
