package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

func TestWarehouseStats_Deltas(t *testing.T) {
	base := entity.WarehouseStats{FirstStock: 90, Receiving: 10, Shipping: 0, WarehouseStock: 100}

	rec := base
	rec.ApplyReceiving(5)
	assert.Equal(t, int64(15), rec.Receiving)
	assert.Equal(t, int64(105), rec.WarehouseStock)
	assert.Equal(t, base.Shipping, rec.Shipping)

	ship := base
	ship.ApplyShipping(3)
	assert.Equal(t, int64(3), ship.Shipping)
	assert.Equal(t, int64(97), ship.WarehouseStock)
	assert.Equal(t, base.Receiving, ship.Receiving)
}

func TestWarehouseStats_ApplyPorTipo(t *testing.T) {
	s := entity.WarehouseStats{WarehouseStock: 50}
	s.Apply(entity.EventReceiving, 4)
	s.Apply(entity.EventShipping, 1)
	s.Apply(entity.EventKind("otro"), 100)

	assert.Equal(t, entity.WarehouseStats{Receiving: 4, Shipping: 1, WarehouseStock: 53}, s)
}
