package payments

import (
	"errors"

	"woodlinks-backend/internal/models"
)

var ErrUnknownMaterial = errors.New("unknown material")

// pricePer100 is the price of 100 cards in the smallest currency unit.
var pricePer100 = map[models.Material]int64{
	models.MaterialSugi:   33000,
	models.MaterialHinoki: 44000,
	models.MaterialKeyaki: 55000,
}

type Quote struct {
	Material  models.Material
	Quantity  int
	UnitPrice int64 // per 100 cards
	Total     int64
}

// PriceFor returns ceil(pricePer100 / 100 * quantity), computed without floats.
func PriceFor(material models.Material, quantity int) (Quote, error) {
	per100, ok := pricePer100[material]
	if !ok {
		return Quote{}, ErrUnknownMaterial
	}
	if quantity < 1 {
		return Quote{}, errors.New("quantity must be at least 1")
	}

	total := (per100*int64(quantity) + 99) / 100
	return Quote{
		Material:  material,
		Quantity:  quantity,
		UnitPrice: per100,
		Total:     total,
	}, nil
}
