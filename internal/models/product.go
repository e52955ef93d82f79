// Package models contains the domain types shared by the inventory client and server.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

// Product is one inventory line. ID is empty until the store assigns one.
type Product struct {
	ID       string  `json:"id" bson:"_id"`
	Code     int     `json:"code" bson:"code"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// Total is the inventory value of the line. It is always derived, never stored.
func (p Product) Total() float64 {
	return p.Price * float64(p.Quantity)
}

// Validate rejects negative price or quantity.
func (p Product) Validate() error {
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price %v", common.ErrorValidation, p.Price)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", common.ErrorValidation, p.Quantity)
	}
	return nil
}

// TotalOf sums Total over products.
func TotalOf(products []Product) float64 {
	var sum float64
	for _, p := range products {
		sum += p.Total()
	}
	return sum
}

// FindByID returns the product with the given id from list.
func FindByID(list []Product, id string) (Product, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
