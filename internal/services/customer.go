package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recovera/timeline-service/internal/api/validate"
	"github.com/recovera/timeline-service/internal/model"
	"github.com/recovera/timeline-service/internal/store"
)

// CustomerService is plain keyed CRUD over debtor records plus their
// per-customer event history.
type CustomerService struct {
	store store.Store
	newID func() string
	now   func() time.Time
}

func NewCustomerService(s store.Store) *CustomerService {
	return &CustomerService{
		store: s,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

func (s *CustomerService) Create(ctx context.Context, workspaceID string, c model.Customer) (model.Customer, error) {
	if err := validate.Customer(c); err != nil {
		return model.Customer{}, err
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	c.WorkspaceID = workspaceID
	if err := s.store.Customers().Put(ctx, &c); err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, workspaceID, customerID string) (*model.Customer, error) {
	return s.store.Customers().Get(ctx, workspaceID, customerID)
}

func (s *CustomerService) List(ctx context.Context, workspaceID string) ([]*model.Customer, error) {
	return s.store.Customers().List(ctx, workspaceID)
}

func (s *CustomerService) Update(ctx context.Context, workspaceID, customerID string, c model.Customer) (model.Customer, error) {
	if _, err := s.store.Customers().Get(ctx, workspaceID, customerID); err != nil {
		return model.Customer{}, err
	}
	c.ID = customerID
	c.WorkspaceID = workspaceID
	if err := validate.Customer(c); err != nil {
		return model.Customer{}, err
	}
	if err := s.store.Customers().Put(ctx, &c); err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, workspaceID, customerID string) error {
	return s.store.Customers().Delete(ctx, workspaceID, customerID)
}

// RecordEvent appends an event to the customer's history. The customer must
// exist; the event date defaults to now.
func (s *CustomerService) RecordEvent(ctx context.Context, workspaceID, customerID string, e model.CustomerTimelineEvent) (model.CustomerTimelineEvent, error) {
	if _, err := s.store.Customers().Get(ctx, workspaceID, customerID); err != nil {
		return model.CustomerTimelineEvent{}, err
	}
	if err := validate.NonEmpty("type", e.Type); err != nil {
		return model.CustomerTimelineEvent{}, err
	}
	if err := validate.NonEmpty("title", e.Title); err != nil {
		return model.CustomerTimelineEvent{}, err
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Date.IsZero() {
		e.Date = s.now().UTC()
	}
	e.WorkspaceID = workspaceID
	e.CustomerID = customerID
	if err := s.store.Events().Put(ctx, &e); err != nil {
		return model.CustomerTimelineEvent{}, err
	}
	return e, nil
}

// Events returns the customer's history, oldest first.
func (s *CustomerService) Events(ctx context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error) {
	return s.store.Events().ListByCustomer(ctx, workspaceID, customerID)
}

// SegmentService is keyed CRUD over customer segments. Deleting a segment is
// blocked while customers are still assigned to it.
type SegmentService struct {
	store store.Store
	newID func() string
}

func NewSegmentService(s store.Store) *SegmentService {
	return &SegmentService{store: s, newID: func() string { return uuid.New().String() }}
}

func (s *SegmentService) Create(ctx context.Context, workspaceID string, seg model.CustomerSegment) (model.CustomerSegment, error) {
	if err := validate.Segment(seg); err != nil {
		return model.CustomerSegment{}, err
	}
	if seg.ID == "" {
		seg.ID = s.newID()
	}
	seg.WorkspaceID = workspaceID
	if err := s.store.Segments().Put(ctx, &seg); err != nil {
		return model.CustomerSegment{}, err
	}
	return seg, nil
}

func (s *SegmentService) Get(ctx context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error) {
	return s.store.Segments().Get(ctx, workspaceID, segmentID)
}

func (s *SegmentService) List(ctx context.Context, workspaceID string) ([]*model.CustomerSegment, error) {
	return s.store.Segments().List(ctx, workspaceID)
}

func (s *SegmentService) Update(ctx context.Context, workspaceID, segmentID string, seg model.CustomerSegment) (model.CustomerSegment, error) {
	if _, err := s.store.Segments().Get(ctx, workspaceID, segmentID); err != nil {
		return model.CustomerSegment{}, err
	}
	seg.ID = segmentID
	seg.WorkspaceID = workspaceID
	if err := validate.Segment(seg); err != nil {
		return model.CustomerSegment{}, err
	}
	if err := s.store.Segments().Put(ctx, &seg); err != nil {
		return model.CustomerSegment{}, err
	}
	return seg, nil
}

func (s *SegmentService) Delete(ctx context.Context, workspaceID, segmentID string) error {
	if _, err := s.store.Segments().Get(ctx, workspaceID, segmentID); err != nil {
		return err
	}
	customers, err := s.store.Customers().List(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, c := range customers {
		if c.SegmentID == segmentID {
			return fmt.Errorf("%w: segment %s is assigned to customer %s", model.ErrConflict, segmentID, c.ID)
		}
	}
	return s.store.Segments().Delete(ctx, workspaceID, segmentID)
}
