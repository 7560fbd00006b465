package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"careportal/internal/domain"
)

type wireEntry struct {
	ID     string        `json:"id"`
	DocID  string        `json:"_id"`
	UserID string        `json:"userId"`
	Weight domain.Metric `json:"weight"`
	Date   domain.Day    `json:"date"`
	Notes  string        `json:"notes"`
}

func (w wireEntry) entry() domain.WeightEntry {
	return domain.WeightEntry{
		ID:     pickID(w.ID, w.DocID),
		UserID: w.UserID,
		Weight: w.Weight,
		Date:   w.Date,
		Notes:  w.Notes,
	}
}

type entryStore struct {
	c     *Client
	token string
}

func entryParams(q domain.EntryQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if !q.StartDate.IsZero() {
		v.Set("startDate", q.StartDate.String())
	}
	if !q.EndDate.IsZero() {
		v.Set("endDate", q.EndDate.String())
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}
	return v
}

func (s *entryStore) ListEntries(ctx context.Context, q domain.EntryQuery) ([]domain.WeightEntry, error) {
	var wire []wireEntry
	if err := s.c.do(ctx, s.token, http.MethodGet, "/weight-entries", entryParams(q), nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.WeightEntry, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.entry())
	}
	return out, nil
}

func (s *entryStore) GetEntry(ctx context.Context, id string) (*domain.WeightEntry, error) {
	return s.one(ctx, http.MethodGet, "/weight-entries/"+url.PathEscape(id), nil)
}

func (s *entryStore) CreateEntry(ctx context.Context, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	return s.one(ctx, http.MethodPost, "/weight-entries", in)
}

func (s *entryStore) UpdateEntry(ctx context.Context, id string, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	return s.one(ctx, http.MethodPut, "/weight-entries/"+url.PathEscape(id), in)
}

func (s *entryStore) DeleteEntry(ctx context.Context, id string) error {
	return s.c.do(ctx, s.token, http.MethodDelete, "/weight-entries/"+url.PathEscape(id), nil, nil, nil)
}

func (s *entryStore) one(ctx context.Context, method, path string, body any) (*domain.WeightEntry, error) {
	var w wireEntry
	if err := s.c.do(ctx, s.token, method, path, nil, body, &w); err != nil {
		return nil, err
	}
	e := w.entry()
	return &e, nil
}

type wireMedication struct {
	ID        string     `json:"id"`
	DocID     string     `json:"_id"`
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency"`
	StartDate domain.Day `json:"startDate"`
	EndDate   domain.Day `json:"endDate"`
}

func (w wireMedication) medication() domain.Medication {
	return domain.Medication{
		ID:        pickID(w.ID, w.DocID),
		Name:      w.Name,
		Dosage:    w.Dosage,
		Frequency: w.Frequency,
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
	}
}

// medicationRef decodes a shipment's medication, which upstream sends either
// populated or as a bare id.
type medicationRef struct {
	domain.Medication
}

func (m *medicationRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		m.Medication = domain.Medication{ID: id}
		return nil
	}
	var w wireMedication
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	m.Medication = w.medication()
	return nil
}

type medicationStore struct {
	c     *Client
	token string
}

func (s *medicationStore) ListMedications(ctx context.Context) ([]domain.Medication, error) {
	var wire []wireMedication
	if err := s.c.do(ctx, s.token, http.MethodGet, "/medications", nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Medication, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.medication())
	}
	return out, nil
}

func (s *medicationStore) GetMedication(ctx context.Context, id string) (*domain.Medication, error) {
	return s.one(ctx, http.MethodGet, "/medications/"+url.PathEscape(id), nil)
}

func (s *medicationStore) CreateMedication(ctx context.Context, in domain.MedicationInput) (*domain.Medication, error) {
	return s.one(ctx, http.MethodPost, "/medications", in)
}

func (s *medicationStore) UpdateMedication(ctx context.Context, id string, in domain.MedicationInput) (*domain.Medication, error) {
	return s.one(ctx, http.MethodPut, "/medications/"+url.PathEscape(id), in)
}

func (s *medicationStore) DeleteMedication(ctx context.Context, id string) error {
	return s.c.do(ctx, s.token, http.MethodDelete, "/medications/"+url.PathEscape(id), nil, nil, nil)
}

func (s *medicationStore) one(ctx context.Context, method, path string, body any) (*domain.Medication, error) {
	var w wireMedication
	if err := s.c.do(ctx, s.token, method, path, nil, body, &w); err != nil {
		return nil, err
	}
	m := w.medication()
	return &m, nil
}

type wireShipment struct {
	ID                   string                `json:"id"`
	DocID                string                `json:"_id"`
	UserID               string                `json:"userId"`
	Medication           *medicationRef        `json:"medication"`
	Status               domain.ShipmentStatus `json:"status"`
	OrderDate            domain.Day            `json:"orderDate"`
	ShippedDate          domain.Day            `json:"shippedDate"`
	ExpectedDeliveryDate domain.Day            `json:"expectedDeliveryDate"`
	TrackingNumber       string                `json:"trackingNumber"`
	Quantity             int                   `json:"quantity"`
	Items                []domain.ShipmentItem `json:"items"`
	Address              domain.Address        `json:"address"`
}

func (w wireShipment) shipment() domain.Shipment {
	s := domain.Shipment{
		ID:                   pickID(w.ID, w.DocID),
		UserID:               w.UserID,
		Status:               w.Status,
		OrderDate:            w.OrderDate,
		ShippedDate:          w.ShippedDate,
		ExpectedDeliveryDate: w.ExpectedDeliveryDate,
		TrackingNumber:       w.TrackingNumber,
		Quantity:             w.Quantity,
		Items:                w.Items,
		Address:              w.Address,
	}
	if w.Medication != nil {
		s.Medication = w.Medication.Medication
	}
	return s
}

// shipmentBody is the upstream write shape; it links the medication by id.
type shipmentBody struct {
	Medication           string                `json:"medication,omitempty"`
	Status               domain.ShipmentStatus `json:"status"`
	OrderDate            domain.Day            `json:"orderDate"`
	ShippedDate          domain.Day            `json:"shippedDate"`
	ExpectedDeliveryDate domain.Day            `json:"expectedDeliveryDate"`
	TrackingNumber       string                `json:"trackingNumber,omitempty"`
	Quantity             int                   `json:"quantity"`
	Items                []domain.ShipmentItem `json:"items"`
	Address              domain.Address        `json:"address"`
}

func newShipmentBody(in domain.ShipmentInput) shipmentBody {
	return shipmentBody{
		Medication:           in.MedicationID,
		Status:               in.Status,
		OrderDate:            in.OrderDate,
		ShippedDate:          in.ShippedDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		TrackingNumber:       in.TrackingNumber,
		Quantity:             in.Quantity,
		Items:                in.Items,
		Address:              in.Address,
	}
}

type shipmentStore struct {
	c     *Client
	token string
}

func (s *shipmentStore) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	var wire []wireShipment
	if err := s.c.do(ctx, s.token, http.MethodGet, "/shipments", nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Shipment, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.shipment())
	}
	return out, nil
}

func (s *shipmentStore) CreateShipment(ctx context.Context, in domain.ShipmentInput) (*domain.Shipment, error) {
	return s.one(ctx, http.MethodPost, "/shipments", newShipmentBody(in))
}

func (s *shipmentStore) UpdateShipment(ctx context.Context, id string, in domain.ShipmentInput) (*domain.Shipment, error) {
	return s.one(ctx, http.MethodPut, "/shipments/"+url.PathEscape(id), newShipmentBody(in))
}

func (s *shipmentStore) DeleteShipment(ctx context.Context, id string) error {
	return s.c.do(ctx, s.token, http.MethodDelete, "/shipments/"+url.PathEscape(id), nil, nil, nil)
}

func (s *shipmentStore) one(ctx context.Context, method, path string, body any) (*domain.Shipment, error) {
	var w wireShipment
	if err := s.c.do(ctx, s.token, method, path, nil, body, &w); err != nil {
		return nil, err
	}
	sh := w.shipment()
	return &sh, nil
}

type wireProfile struct {
	ID             string     `json:"id"`
	DocID          string     `json:"_id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	DateOfBirth    domain.Day `json:"dateOfBirth"`
	Phone          string     `json:"phone"`
	EnrollmentDate domain.Day `json:"enrollmentDate"`
}

func (w wireProfile) profile() *domain.Profile {
	return &domain.Profile{
		ID:             pickID(w.ID, w.DocID),
		Email:          w.Email,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		DateOfBirth:    w.DateOfBirth,
		Phone:          w.Phone,
		EnrollmentDate: w.EnrollmentDate,
	}
}

type profileStore struct {
	c     *Client
	token string
}

func (s *profileStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var w wireProfile
	if err := s.c.do(ctx, s.token, http.MethodGet, "/users/me", nil, nil, &w); err != nil {
		return nil, err
	}
	return w.profile(), nil
}

func (s *profileStore) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	var w wireProfile
	if err := s.c.do(ctx, s.token, http.MethodPut, "/users/me", nil, in, &w); err != nil {
		return nil, err
	}
	return w.profile(), nil
}
