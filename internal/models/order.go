package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Orders only move forward through these.
const (
	StatusSolicitado = "solicitado"
	StatusAndamento  = "andamento"
	StatusPreparando = "preparando"
	StatusConcluido  = "concluido"
	StatusFinalizado = "finalizado"
	StatusCancelado  = "cancelado"
)

// Order origins.
const (
	OriginCardapio = "cardapio"
	OriginCaixa    = "caixa"
)

// Coupon is a discount rule. Type is "percent" or "value".
type Coupon struct {
	Code  string  `bson:"code" json:"code" mapstructure:"code"`
	Type  string  `bson:"type" json:"type" mapstructure:"type"`
	Value float64 `bson:"value" json:"value" mapstructure:"value"`
	Label string  `bson:"label" json:"label" mapstructure:"label"`
}

// OrderItem is one line of a persisted order.
type OrderItem struct {
	ProductID  string `bson:"productId" json:"productId"`
	Name       string `bson:"name" json:"name"`
	Qty        int    `bson:"qty" json:"qty"`
	Price      Amount `bson:"price" json:"price"`
	TotalItem  Amount `bson:"totalItem" json:"totalItem"`
	Size       string `bson:"size,omitempty" json:"size,omitempty"`
	IsCombo    bool   `bson:"isCombo" json:"isCombo"`
	CategoryID string `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	ImageURL   string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// Order is the document stored in the pedidos collection.
type Order struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PedidoNumber        int64              `bson:"pedidoNumber" json:"pedidoNumber"`
	Itens               []OrderItem        `bson:"itens" json:"itens"`
	Note                string             `bson:"note" json:"note"`
	PaymentMethod       string             `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	Subtotal            Amount             `bson:"subtotal" json:"subtotal"`
	DeliveryFee         Amount             `bson:"deliveryFee" json:"deliveryFee"`
	DiscountPercent     Amount             `bson:"discountPercent" json:"discountPercent"`
	DiscountFromPercent Amount             `bson:"discountFromPercent" json:"discountFromPercent"`
	DiscountValueManual Amount             `bson:"discountValueManual" json:"discountValueManual"`
	Coupon              *Coupon            `bson:"coupon" json:"coupon"`
	CouponDiscountValue Amount             `bson:"couponDiscountValue" json:"couponDiscountValue"`
	TotalDiscounts      Amount             `bson:"totalDiscounts" json:"totalDiscounts"`
	Total               Amount             `bson:"total" json:"total"`
	Status              string             `bson:"status" json:"status"`
	Origin              string             `bson:"origin,omitempty" json:"origin,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
