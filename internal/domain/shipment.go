package domain

import (
	"context"
	"sort"
)

// ShipmentStatus is the fulfilment state of a shipment.
type ShipmentStatus string

// Shipment statuses.
const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentShipped   ShipmentStatus = "shipped"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentDelayed   ShipmentStatus = "delayed"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentShipped, ShipmentDelivered, ShipmentDelayed, ShipmentCancelled:
		return true
	}
	return false
}

// ShipmentItem is one line of a shipment.
type ShipmentItem struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price,omitempty"`
}

// Address is a postal delivery address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Shipment is a medication delivery to the patient.
type Shipment struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"userId"`
	Medication           Medication     `json:"medication"`
	Status               ShipmentStatus `json:"status"`
	OrderDate            Day            `json:"orderDate"`
	ShippedDate          Day            `json:"shippedDate"`
	ExpectedDeliveryDate Day            `json:"expectedDeliveryDate"`
	TrackingNumber       string         `json:"trackingNumber,omitempty"`
	Quantity             int            `json:"quantity"`
	Items                []ShipmentItem `json:"items"`
	Address              Address        `json:"address"`
}

// ShipmentInput carries the editable fields of a shipment. MedicationID
// links an existing medication record.
type ShipmentInput struct {
	MedicationID         string         `json:"medicationId"`
	Status               ShipmentStatus `json:"status"`
	OrderDate            Day            `json:"orderDate"`
	ShippedDate          Day            `json:"shippedDate"`
	ExpectedDeliveryDate Day            `json:"expectedDeliveryDate"`
	TrackingNumber       string         `json:"trackingNumber,omitempty"`
	Quantity             int            `json:"quantity"`
	Items                []ShipmentItem `json:"items"`
	Address              Address        `json:"address"`
}

// ShipmentStore is the port to one user's shipments.
type ShipmentStore interface {
	ListShipments(ctx context.Context) ([]Shipment, error)
	CreateShipment(ctx context.Context, in ShipmentInput) (*Shipment, error)
	UpdateShipment(ctx context.Context, id string, in ShipmentInput) (*Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
}

// FilterShipments keeps shipments with the given status. The empty status
// and "all" keep everything.
func FilterShipments(shipments []Shipment, status string) []Shipment {
	if status == "" || status == "all" {
		return shipments
	}
	out := make([]Shipment, 0, len(shipments))
	for _, s := range shipments {
		if string(s.Status) == status {
			out = append(out, s)
		}
	}
	return out
}

// NextShipment returns the earliest shipment still on its way (pending or
// shipped), ordered by shipped date or, when not shipped yet, order date.
// It returns nil when there is none.
func NextShipment(shipments []Shipment) *Shipment {
	open := make([]Shipment, 0, len(shipments))
	for _, s := range shipments {
		if s.Status == ShipmentPending || s.Status == ShipmentShipped {
			open = append(open, s)
		}
	}
	if len(open) == 0 {
		return nil
	}
	sort.SliceStable(open, func(i, j int) bool {
		return shipmentSortDay(open[i]).Before(shipmentSortDay(open[j]))
	})
	next := open[0]
	return &next
}

func shipmentSortDay(s Shipment) Day {
	if !s.ShippedDate.IsZero() {
		return s.ShippedDate
	}
	return s.OrderDate
}
