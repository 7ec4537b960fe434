package repository

import (
	"context"
	"errors"
	"fmt"

	"go-packet-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error)
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error)
	UpdatePackets(tx *gorm.DB, ownerID, productID uuid.UUID, size model.PacketSize, delta int) error
	ConvertPackets(tx *gorm.DB, ownerID, productID uuid.UUID, dir model.ConvertDirection, conversions int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translateError("create product", r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name ASC").Find(&products).Error
	return products, translateError("list products", err)
}

func (r *productRepo) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, translateError("find product", err)
	}
	return &product, nil
}

// UpdatePackets adds delta to the counter of the given size as one
// conditional statement. A negative delta only applies while the counter
// stays >= 0, so concurrent sales cannot both pass the check.
func (r *productRepo) UpdatePackets(tx *gorm.DB, ownerID, productID uuid.UUID, size model.PacketSize, delta int) error {
	col := size.StockColumn()
	q := tx.Model(&model.Product{}).Where("id = ? AND owner_id = ?", productID, ownerID)
	if delta < 0 {
		q = q.Where(col+" >= ?", -delta)
	}

	res := q.Updates(map[string]interface{}{
		col:          gorm.Expr(col+" + ?", delta),
		"updated_by": ownerID.String(),
	})
	if res.Error != nil {
		return translateError("update packets", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return explainMiss(tx, ownerID, productID, size, -delta)
}

// ConvertPackets repacks stock between sizes. Two 250g packets make one
// 500g packet. The guard and both counter writes are a single UPDATE.
func (r *productRepo) ConvertPackets(tx *gorm.DB, ownerID, productID uuid.UUID, dir model.ConvertDirection, conversions int) error {
	var (
		source   model.PacketSize
		required int
		updates  map[string]interface{}
	)
	switch dir {
	case model.Convert500To250:
		source, required = model.Packet500, conversions
		updates = map[string]interface{}{
			"stock_packets_500": gorm.Expr("stock_packets_500 - ?", conversions),
			"stock_packets_250": gorm.Expr("stock_packets_250 + ?", 2*conversions),
		}
	case model.Convert250To500:
		source, required = model.Packet250, 2*conversions
		updates = map[string]interface{}{
			"stock_packets_250": gorm.Expr("stock_packets_250 - ?", 2*conversions),
			"stock_packets_500": gorm.Expr("stock_packets_500 + ?", conversions),
		}
	default:
		return model.InvalidInput("unknown conversion direction %q", dir)
	}
	updates["updated_by"] = ownerID.String()

	res := tx.Model(&model.Product{}).
		Where("id = ? AND owner_id = ?", productID, ownerID).
		Where(source.StockColumn()+" >= ?", required).
		Updates(updates)
	if res.Error != nil {
		return translateError("convert packets", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return explainMiss(tx, ownerID, productID, source, required)
}

// explainMiss works out why a conditional update matched no row.
func explainMiss(tx *gorm.DB, ownerID, productID uuid.UUID, size model.PacketSize, requested int) error {
	var product model.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %s: %w", productID, model.ErrNotFound)
		}
		return translateError("find product", err)
	}
	if product.OwnerID != ownerID {
		return fmt.Errorf("product %s: %w", productID, model.ErrForbidden)
	}
	return &model.InsufficientStockError{
		ProductID:  productID,
		PacketSize: size,
		Available:  product.Stock(size),
		Requested:  requested,
	}
}
