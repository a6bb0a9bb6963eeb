package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	blockserrors "staybook/internal/blocks/errors"
	"staybook/internal/blocks/validator"
	bookingserrors "staybook/internal/bookings/errors"
	bookingservice "staybook/internal/bookings/service"
	bookingvalidator "staybook/internal/bookings/validator"
	"staybook/pkg/clock"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

type mockBlockRepository struct {
	findByIDFn          func(ctx context.Context, id string) (*model.Block, error)
	softDeleteFn        func(ctx context.Context, propertyID, id string, at time.Time) (bool, error)
	existsOverlappingFn func(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error)

	inserted []*model.Block
	updated  []*model.Block
}

func (m *mockBlockRepository) Insert(ctx context.Context, block *model.Block) error {
	m.inserted = append(m.inserted, block)
	return nil
}

func (m *mockBlockRepository) FindByID(ctx context.Context, id string) (*model.Block, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, blockserrors.ErrNotFound
}

func (m *mockBlockRepository) Update(ctx context.Context, block *model.Block) error {
	m.updated = append(m.updated, block)
	return nil
}

func (m *mockBlockRepository) SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, propertyID, id, at)
	}
	return true, nil
}

func (m *mockBlockRepository) ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
	if m.existsOverlappingFn != nil {
		return m.existsOverlappingFn(ctx, propertyID, start, end, excludeID)
	}
	return false, nil
}

func (m *mockBlockRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockPropertyService struct {
	assertExistsFn func(ctx context.Context, propertyID string) error
}

func (m *mockPropertyService) AssertExists(ctx context.Context, propertyID string) error {
	if m.assertExistsFn != nil {
		return m.assertExistsFn(ctx, propertyID)
	}
	return nil
}

type mockLockRepository struct {
	acquired []string
	released []string
}

func (m *mockLockRepository) Acquire(ctx context.Context, propertyID string) (string, error) {
	lockID := "property_lock_" + propertyID
	m.acquired = append(m.acquired, lockID)
	return lockID, nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockPublisher struct {
	events []kafka.ReservationEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event kafka.ReservationEvent) error {
	m.events = append(m.events, event)
	return nil
}

type blockFixture struct {
	repo       *mockBlockRepository
	properties *mockPropertyService
	locks      *mockLockRepository
	events     *mockPublisher
	service    BlockService
}

func newBlockFixture() *blockFixture {
	f := &blockFixture{
		repo:       &mockBlockRepository{},
		properties: &mockPropertyService{},
		locks:      &mockLockRepository{},
		events:     &mockPublisher{},
	}
	cfg := &config.Config{Log: logger.New(logger.Config{Output: io.Discard})}
	clk := clock.Fixed{Time: testNow}
	f.service = NewBlockService(
		f.repo,
		f.properties,
		f.locks,
		validator.NewBlockValidator(cfg.Log, clk),
		clk,
		f.events,
		cfg,
	)
	return f
}

func validBlockRequest() *model.BlockRequest {
	start := testNow.AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 14)
	return &model.BlockRequest{StartDate: &start, EndDate: &end}
}

func TestCreateBlock(t *testing.T) {
	propertyID := uuid.NewString()

	t.Run("creates block and publishes event", func(t *testing.T) {
		f := newBlockFixture()
		req := validBlockRequest()

		block, err := f.service.Create(context.Background(), propertyID, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := uuid.Parse(block.ID); err != nil {
			t.Errorf("expected UUID id, got %q", block.ID)
		}
		if block.PropertyID != propertyID {
			t.Errorf("expected property %s, got %s", propertyID, block.PropertyID)
		}
		if !block.DateCreated.Equal(testNow) {
			t.Errorf("expected DateCreated %v, got %v", testNow, block.DateCreated)
		}
		if len(f.repo.inserted) != 1 {
			t.Fatalf("expected 1 insert, got %d", len(f.repo.inserted))
		}
		if len(f.locks.acquired) != 1 || len(f.locks.released) != 1 {
			t.Errorf("expected lock acquired and released, got %d/%d", len(f.locks.acquired), len(f.locks.released))
		}
		if len(f.events.events) != 1 || f.events.events[0].Type != kafka.EventBlockCreated {
			t.Errorf("expected a %s event, got %+v", kafka.EventBlockCreated, f.events.events)
		}
	})

	t.Run("rejects overlap with another block", func(t *testing.T) {
		f := newBlockFixture()
		f.repo.existsOverlappingFn = func(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
			return true, nil
		}

		_, err := f.service.Create(context.Background(), propertyID, validBlockRequest())
		assertAppError(t, err, 400, "Blocks cannot overlap with other blocks")

		if len(f.repo.inserted) != 0 {
			t.Errorf("expected no insert on overlap")
		}
	})

	t.Run("rejects unknown property", func(t *testing.T) {
		f := newBlockFixture()
		f.properties.assertExistsFn = func(ctx context.Context, propertyID string) error {
			return apperrors.NotFound("Property")
		}

		_, err := f.service.Create(context.Background(), propertyID, validBlockRequest())
		assertAppError(t, err, 404, "Property not found")
	})

	t.Run("rejects missing dates with field errors", func(t *testing.T) {
		f := newBlockFixture()

		_, err := f.service.Create(context.Background(), propertyID, &model.BlockRequest{})

		appErr, ok := err.(*apperrors.AppError)
		if !ok {
			t.Fatalf("expected AppError, got %T", err)
		}
		if appErr.StatusCode() != 400 {
			t.Errorf("expected status 400, got %d", appErr.StatusCode())
		}
		if appErr.FieldErrors["startDate"] == "" || appErr.FieldErrors["endDate"] == "" {
			t.Errorf("expected startDate and endDate field errors, got %v", appErr.FieldErrors)
		}
	})
}

func TestUpdateBlock(t *testing.T) {
	propertyID := uuid.NewString()
	blockID := uuid.NewString()

	existing := func() *model.Block {
		return &model.Block{
			Reservation: model.Reservation{
				ID:          blockID,
				PropertyID:  propertyID,
				StartDate:   testNow.AddDate(0, 2, 0),
				EndDate:     testNow.AddDate(0, 2, 14),
				DateCreated: testNow.AddDate(0, 0, -10),
			},
		}
	}

	t.Run("excludes own record from the overlap scan", func(t *testing.T) {
		f := newBlockFixture()
		f.repo.findByIDFn = func(ctx context.Context, id string) (*model.Block, error) {
			return existing(), nil
		}

		var gotExclude string
		f.repo.existsOverlappingFn = func(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
			gotExclude = excludeID
			return false, nil
		}

		if err := f.service.Update(context.Background(), propertyID, blockID, validBlockRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotExclude != blockID {
			t.Errorf("expected own ID %s excluded, got %q", blockID, gotExclude)
		}
	})

	t.Run("preserves identity and stamps date_updated", func(t *testing.T) {
		f := newBlockFixture()
		orig := existing()
		f.repo.findByIDFn = func(ctx context.Context, id string) (*model.Block, error) {
			return orig, nil
		}
		req := validBlockRequest()

		if err := f.service.Update(context.Background(), propertyID, blockID, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.repo.updated) != 1 {
			t.Fatalf("expected 1 update, got %d", len(f.repo.updated))
		}
		got := f.repo.updated[0]
		if got.ID != blockID || got.PropertyID != propertyID {
			t.Errorf("identity changed: %s / %s", got.ID, got.PropertyID)
		}
		if !got.DateCreated.Equal(orig.DateCreated) {
			t.Errorf("DateCreated must survive updates, got %v", got.DateCreated)
		}
		if got.DateUpdated == nil || !got.DateUpdated.Equal(testNow) {
			t.Errorf("expected DateUpdated %v, got %v", testNow, got.DateUpdated)
		}
	})

	t.Run("missing block yields not found", func(t *testing.T) {
		f := newBlockFixture()

		err := f.service.Update(context.Background(), propertyID, blockID, validBlockRequest())
		assertAppError(t, err, 404, "Property block not found")
	})
}

func TestCancelBlock(t *testing.T) {
	propertyID := uuid.NewString()
	blockID := uuid.NewString()

	t.Run("soft deletes and publishes event", func(t *testing.T) {
		f := newBlockFixture()

		if err := f.service.Cancel(context.Background(), propertyID, blockID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.events.events) != 1 || f.events.events[0].Type != kafka.EventBlockCancelled {
			t.Errorf("expected a %s event, got %+v", kafka.EventBlockCancelled, f.events.events)
		}
	})

	t.Run("unknown block yields not found", func(t *testing.T) {
		f := newBlockFixture()
		f.repo.softDeleteFn = func(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
			return false, nil
		}

		err := f.service.Cancel(context.Background(), propertyID, blockID)
		assertAppError(t, err, 404, "Property block not found")
	})

	t.Run("malformed id yields bad request", func(t *testing.T) {
		f := newBlockFixture()
		f.repo.softDeleteFn = func(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
			return false, blockserrors.ErrInvalidID
		}

		err := f.service.Cancel(context.Background(), propertyID, "not-a-uuid")
		assertAppError(t, err, 400, "Invalid block ID format")
	})
}

// In-memory stores evaluating the real overlap predicate, shared between
// both services so cross-entity policy can be exercised end to end.
type memStore struct {
	bookings []*model.Booking
	blocks   []*model.Block
}

func sharesInstant(start, end, s, e time.Time) bool {
	within := func(t, lo, hi time.Time) bool { return !t.Before(lo) && !t.After(hi) }
	return within(start, s, e) || within(end, s, e) || within(s, start, end)
}

type memBookingRepository struct{ store *memStore }

func (r *memBookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	r.store.bookings = append(r.store.bookings, b)
	return nil
}

func (r *memBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	for _, b := range r.store.bookings {
		if b.ID == id && b.DateDeleted == nil {
			return b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memBookingRepository) Update(ctx context.Context, b *model.Booking) error { return nil }

func (r *memBookingRepository) SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
	return false, nil
}

func (r *memBookingRepository) ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
	for _, b := range r.store.bookings {
		if b.PropertyID == propertyID && b.ID != excludeID && b.DateDeleted == nil && sharesInstant(start, end, b.StartDate, b.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type memBlockRepository struct{ store *memStore }

func (r *memBlockRepository) Insert(ctx context.Context, b *model.Block) error {
	r.store.blocks = append(r.store.blocks, b)
	return nil
}

func (r *memBlockRepository) FindByID(ctx context.Context, id string) (*model.Block, error) {
	for _, b := range r.store.blocks {
		if b.ID == id && b.DateDeleted == nil {
			return b, nil
		}
	}
	return nil, blockserrors.ErrNotFound
}

func (r *memBlockRepository) Update(ctx context.Context, b *model.Block) error { return nil }

func (r *memBlockRepository) SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
	return false, nil
}

func (r *memBlockRepository) ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
	for _, b := range r.store.blocks {
		if b.PropertyID == propertyID && b.ID != excludeID && b.DateDeleted == nil && sharesInstant(start, end, b.StartDate, b.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBlockRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

// Bookings conflict with blocks, but never the other way around: owners
// may block dates that already carry a booking.
func TestBlocksIgnoreActiveBookings(t *testing.T) {
	propertyID := uuid.NewString()
	ctx := context.Background()
	store := &memStore{}
	cfg := &config.Config{Log: logger.New(logger.Config{Output: io.Discard})}
	clk := clock.Fixed{Time: testNow}
	properties := &mockPropertyService{}
	locks := &mockLockRepository{}
	events := &mockPublisher{}

	bookings := bookingservice.NewBookingService(
		&memBookingRepository{store: store},
		&memBlockRepository{store: store},
		properties,
		locks,
		bookingvalidator.NewBookingValidator(cfg.Log, clk),
		clk,
		events,
		cfg,
	)
	blocks := NewBlockService(
		&memBlockRepository{store: store},
		properties,
		locks,
		validator.NewBlockValidator(cfg.Log, clk),
		clk,
		events,
		cfg,
	)

	day := func(n int) time.Time { return testNow.AddDate(0, 0, n) }
	rng := func(from, to int) (*time.Time, *time.Time) {
		s, e := day(from), day(to)
		return &s, &e
	}
	booking := func(from, to int) *model.BookingRequest {
		s, e := rng(from, to)
		return &model.BookingRequest{GuestFirstName: "Alice", GuestLastName: "Smith", StartDate: s, EndDate: e}
	}
	block := func(from, to int) *model.BlockRequest {
		s, e := rng(from, to)
		return &model.BlockRequest{StartDate: s, EndDate: e}
	}

	if _, err := blocks.Create(ctx, propertyID, block(5, 10)); err != nil {
		t.Fatalf("block on free dates must succeed: %v", err)
	}

	_, err := bookings.Book(ctx, propertyID, booking(6, 8))
	assertAppError(t, err, 400, "Bookings cannot overlap with other bookings or blocks")

	if _, err := bookings.Book(ctx, propertyID, booking(11, 12)); err != nil {
		t.Fatalf("booking on free dates must succeed: %v", err)
	}

	over, err := blocks.Create(ctx, propertyID, block(11, 12))
	if err != nil {
		t.Fatalf("a block over an active booking must succeed: %v", err)
	}

	if err := blocks.Update(ctx, propertyID, over.ID, block(11, 13)); err != nil {
		t.Fatalf("updating a block over an active booking must succeed: %v", err)
	}
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.StatusCode() != status {
		t.Errorf("expected status %d, got %d", status, appErr.StatusCode())
	}
	if appErr.Message != message {
		t.Errorf("expected message %q, got %q", message, appErr.Message)
	}
}
