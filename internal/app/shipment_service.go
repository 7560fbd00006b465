package app

import (
	"context"
	"errors"
	"fmt"

	"careportal/internal/domain"
)

// ShipmentService manages medication shipments.
type ShipmentService struct {
	backend domain.Backend
}

// NewShipmentService creates a ShipmentService reading through backend.
func NewShipmentService(backend domain.Backend) *ShipmentService {
	return &ShipmentService{backend: backend}
}

// List returns the shipments with the given status; "" and "all" return
// every shipment.
func (s *ShipmentService) List(ctx context.Context, sess *domain.Session, status string) ([]domain.Shipment, error) {
	if status != "" && status != "all" && !domain.ShipmentStatus(status).Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	shipments, err := s.backend.Shipments(sess).ListShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := domain.FilterShipments(shipments, status)
	if out == nil {
		out = []domain.Shipment{}
	}
	return out, nil
}

// Create validates and stores a shipment.
func (s *ShipmentService) Create(ctx context.Context, sess *domain.Session, in domain.ShipmentInput) (*domain.Shipment, error) {
	if in.MedicationID == "" {
		return nil, invalid("medicationId", "is required")
	}
	if err := validateShipment(in); err != nil {
		return nil, err
	}
	if err := s.checkMedication(ctx, sess, in.MedicationID); err != nil {
		return nil, err
	}
	return s.backend.Shipments(sess).CreateShipment(ctx, in)
}

// Update validates and replaces a shipment.
func (s *ShipmentService) Update(ctx context.Context, sess *domain.Session, id string, in domain.ShipmentInput) (*domain.Shipment, error) {
	if err := validateShipment(in); err != nil {
		return nil, err
	}
	if err := s.checkMedication(ctx, sess, in.MedicationID); err != nil {
		return nil, err
	}
	return s.backend.Shipments(sess).UpdateShipment(ctx, id, in)
}

// checkMedication rejects a link to a medication the user does not have.
// An empty id keeps the current link.
func (s *ShipmentService) checkMedication(ctx context.Context, sess *domain.Session, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.backend.Medications(sess).GetMedication(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return invalid("medicationId", fmt.Sprintf("unknown medication %q", id))
	}
	if err != nil {
		return fmt.Errorf("get medication %s: %w", id, err)
	}
	return nil
}

// Delete removes a shipment.
func (s *ShipmentService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	return s.backend.Shipments(sess).DeleteShipment(ctx, id)
}

func validateShipment(in domain.ShipmentInput) error {
	if !in.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	if in.Quantity <= 0 {
		return invalid("quantity", "must be greater than 0")
	}
	if in.ExpectedDeliveryDate.IsZero() {
		return invalid("expectedDeliveryDate", "is required")
	}
	if !in.ShippedDate.IsZero() && !in.OrderDate.IsZero() && in.ShippedDate.Before(in.OrderDate) {
		return invalid("shippedDate", "must not be before orderDate")
	}
	for _, it := range in.Items {
		if it.Name == "" || it.Quantity <= 0 {
			return invalid("items", "every item needs a name and a positive quantity")
		}
	}
	return nil
}
