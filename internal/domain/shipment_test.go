package domain_test

import (
	"testing"
	"time"

	"careportal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shipment(id string, status domain.ShipmentStatus, ordered, shipped domain.Day) domain.Shipment {
	return domain.Shipment{ID: id, Status: status, OrderDate: ordered, ShippedDate: shipped}
}

func TestNextShipment(t *testing.T) {
	shipments := []domain.Shipment{
		shipment("delivered", domain.ShipmentDelivered, domain.NewDay(2024, time.January, 1), domain.NewDay(2024, time.January, 2)),
		shipment("pending", domain.ShipmentPending, domain.NewDay(2024, time.March, 1), domain.Day{}),
		shipment("shipped", domain.ShipmentShipped, domain.NewDay(2024, time.January, 20), domain.NewDay(2024, time.February, 10)),
		shipment("cancelled", domain.ShipmentCancelled, domain.NewDay(2023, time.December, 1), domain.Day{}),
	}

	next := domain.NextShipment(shipments)
	require.NotNil(t, next)
	assert.Equal(t, "shipped", next.ID)

	assert.Nil(t, domain.NextShipment(shipments[:1]))
	assert.Nil(t, domain.NextShipment(nil))
}

func TestFilterShipments(t *testing.T) {
	shipments := []domain.Shipment{
		{ID: "1", Status: domain.ShipmentPending},
		{ID: "2", Status: domain.ShipmentDelivered},
		{ID: "3", Status: domain.ShipmentPending},
	}
	assert.Len(t, domain.FilterShipments(shipments, ""), 3)
	assert.Len(t, domain.FilterShipments(shipments, "all"), 3)

	pending := domain.FilterShipments(shipments, "pending")
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "3", pending[1].ID)

	assert.Empty(t, domain.FilterShipments(shipments, "delayed"))
}

func TestShipmentStatusValid(t *testing.T) {
	assert.True(t, domain.ShipmentCancelled.Valid())
	assert.False(t, domain.ShipmentStatus("lost").Valid())
}

func TestAgeOn(t *testing.T) {
	dob := domain.NewDay(1990, time.June, 15)

	age, ok := domain.AgeOn(dob, time.Date(2024, time.June, 16, 10, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, 34, age)

	age, _ = domain.AgeOn(dob, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.Local))
	assert.Equal(t, 33, age)

	_, ok = domain.AgeOn(domain.Day{}, time.Now())
	assert.False(t, ok)
}

func TestFullDaysSince(t *testing.T) {
	days, ok := domain.FullDaysSince(domain.NewDay(2024, time.March, 1), time.Date(2024, time.March, 3, 23, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, 2, days)
}
