package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/metrics"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"

	codeAttempts = 5
)

// DepositCalculator decides how much deposit a booking requires.
type DepositCalculator interface {
	AmountFor(restaurantID uint, date, clock string, guests int) float64
}

type noDeposit struct{}

func (noDeposit) AmountFor(uint, string, string, int) float64 { return 0 }

// ReservationService enforces the booking-conflict rule and drives the
// reservation status machine together with its table-status side effects.
type ReservationService struct {
	db       *gorm.DB
	tables   *TableStore
	locker   SlotLocker
	deposits DepositCalculator
	notifier events.Notifier
	lockWait time.Duration
	now      func() time.Time
	newCode  func() string
}

type ReservationOption func(*ReservationService)

func WithSlotLocker(l SlotLocker) ReservationOption {
	return func(s *ReservationService) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithDepositPolicy(d DepositCalculator) ReservationOption {
	return func(s *ReservationService) {
		if d != nil {
			s.deposits = d
		}
	}
}

func WithNotifier(n events.Notifier) ReservationOption {
	return func(s *ReservationService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) { s.now = now }
}

func WithCodeGenerator(fn func() string) ReservationOption {
	return func(s *ReservationService) { s.newCode = fn }
}

func WithLockWait(d time.Duration) ReservationOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

func NewReservationService(db *gorm.DB, tables *TableStore, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		db:       db,
		tables:   tables,
		locker:   NewLocalSlotLocker(),
		deposits: noDeposit{},
		notifier: events.Nop,
		lockWait: 3 * time.Second,
		now:      time.Now,
		newCode:  newReservationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newReservationCode returns e.g. "RSV-9F1C03AB".
func newReservationCode() string {
	id := uuid.New()
	return "RSV-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

type CreateReservationInput struct {
	RestaurantID   uint
	TableID        uint
	Date           string
	Time           string
	GuestCount     int
	Occasion       *string
	SpecialRequest *string
}

type ReservationFilter struct {
	Status   *models.ReservationStatus
	Date     string
	Upcoming bool
}

type DepositConfirmation struct {
	Code      string
	Amount    float64
	Reference string
	Provider  string
}

// ParseDate normalises a YYYY-MM-DD date.
func ParseDate(field, value string) (string, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return d.Format(dateLayout), nil
}

// ParseClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func ParseClock(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{clockLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(clockLayout), nil
		}
	}
	return "", invalid(field, "must be a time in HH:MM or HH:MM:SS format")
}

func (s *ReservationService) Create(ctx context.Context, actor Actor, in CreateReservationInput) (*models.Reservation, error) {
	res, err := s.create(ctx, actor, in)
	switch {
	case err == nil:
		metrics.IncReservationAttempt("created")
	case errors.Is(err, ErrConflict):
		metrics.IncReservationAttempt("conflict")
	case errors.Is(err, ErrStorage):
		metrics.IncReservationAttempt("error")
	default:
		metrics.IncReservationAttempt("rejected")
	}
	return res, err
}

func (s *ReservationService) create(ctx context.Context, actor Actor, in CreateReservationInput) (*models.Reservation, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if in.RestaurantID == 0 {
		return nil, invalid("restaurant_id", "is required")
	}
	if in.TableID == 0 {
		return nil, invalid("table_id", "is required")
	}
	date, err := ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	clock, err := ParseClock("time", in.Time)
	if err != nil {
		return nil, err
	}
	if in.GuestCount < 1 {
		return nil, invalid("guest_count", "must be at least 1")
	}
	if in.Occasion != nil && len(*in.Occasion) > 100 {
		return nil, invalid("occasion", "must be at most 100 characters")
	}

	table, err := s.tables.Get(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if table.RestaurantID != in.RestaurantID {
		return nil, notFound("table")
	}
	if table.Status == models.TableDisabled {
		return nil, fmt.Errorf("%w: table %s is disabled", ErrConflict, table.Number)
	}
	if in.GuestCount > table.Capacity {
		return nil, invalid("guest_count", "exceeds table capacity of %d", table.Capacity)
	}

	key := slotKey(table.ID, date, clock)
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, key)
	if err != nil {
		if errors.Is(err, ErrSlotBusy) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}
	defer unlock()

	res := models.Reservation{
		RestaurantID:   in.RestaurantID,
		CustomerID:     actor.UserID,
		TableID:        table.ID,
		Date:           date,
		Time:           clock,
		GuestCount:     in.GuestCount,
		Status:         models.ReservationPending,
		SlotKey:        &key,
		Occasion:       in.Occasion,
		SpecialRequest: in.SpecialRequest,
		DepositAmount:  s.deposits.AmountFor(in.RestaurantID, date, clock, in.GuestCount),
	}

	var tableChanged bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Reservation{}).
			Where("table_id = ? AND date = ? AND time = ? AND status NOT IN ?", table.ID, date, clock,
				[]models.ReservationStatus{models.ReservationCancelled, models.ReservationNoShow}).
			Count(&active).Error; err != nil {
			return storageError("check slot", err)
		}
		if active > 0 {
			return slotTaken()
		}

		code, err := s.allocateCode(tx)
		if err != nil {
			return err
		}
		res.Code = code

		if err := tx.Create(&res).Error; err != nil {
			if isDuplicateKey(err) {
				return slotTaken()
			}
			return storageError("insert reservation", err)
		}

		if err := tx.First(table, table.ID).Error; err != nil {
			return lookupError("table", "reload table", err)
		}
		switch table.Status {
		case models.TableDisabled:
			return fmt.Errorf("%w: table %s is disabled", ErrConflict, table.Number)
		case models.TableReserved:
			// manual hold stays until staff clears it
			return nil
		}
		before := table.Status
		if err := s.tables.setStatusTx(tx, table, models.TablePending); err != nil {
			return err
		}
		tableChanged = before != table.Status
		return nil
	})
	if err != nil {
		return nil, txError("create reservation", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"code":           res.Code,
		"table_id":       res.TableID,
		"date":           res.Date,
		"slot_time":      res.Time,
	}).Info("reservation created")

	s.notify(ctx, events.ReservationCreated, &res)
	if tableChanged {
		s.tables.publish(ctx, table)
	}
	return &res, nil
}

func slotTaken() error {
	return fmt.Errorf("%w: table already reserved for that slot", ErrConflict)
}

func (s *ReservationService) allocateCode(tx *gorm.DB) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := s.newCode()
		var n int64
		if err := tx.Model(&models.Reservation{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", storageError("check reservation code", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", storageError("allocate reservation code", errors.New("code space exhausted after retries"))
}

// txError keeps business errors from a transaction and wraps the rest.
func txError(op string, err error) error {
	if isBusinessError(err) {
		return err
	}
	return storageError(op, err)
}

// UpdateStatus moves a reservation along the transition table and applies
// the table-status side effects of the new status.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.ReservationStatus) (*models.Reservation, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown reservation status %q", status)
	}
	return s.transition(ctx, actor, id, status)
}

// MarkArrived seats the party: confirmed -> arrived, table -> occupied.
func (s *ReservationService) MarkArrived(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	return s.transition(ctx, actor, id, models.ReservationArrived)
}

func (s *ReservationService) transition(ctx context.Context, actor Actor, id uint, to models.ReservationStatus) (*models.Reservation, error) {
	var (
		res   models.Reservation
		from  models.ReservationStatus
		table *models.Table
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return lookupError("reservation", "load reservation", err)
		}
		if err := requireManager(actor, res.RestaurantID); err != nil {
			return err
		}
		from = res.Status
		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		updates := map[string]interface{}{"status": to}
		if !to.HoldsSlot() {
			updates["slot_key"] = nil
		}
		if err := applyStatus(tx, &res, from, updates, ErrInvalidTransition); err != nil {
			return err
		}

		var err error
		table, err = s.cascadeTable(tx, &res, to)
		return err
	})
	if err != nil {
		return nil, txError("update reservation status", err)
	}

	metrics.IncStatusTransition(string(from), string(to))
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"from":           from,
		"to":             to,
		"actor":          actor.UserID,
	}).Info("reservation status changed")

	s.notify(ctx, events.ReservationStatusChanged, &res)
	if table != nil {
		s.tables.publish(ctx, table)
	}
	return &res, nil
}

// Cancel is open to the reservation's customer and to the restaurant's staff.
// The table is released under the same rule as UpdateStatus(cancelled).
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id uint, reason string) error {
	var (
		res   models.Reservation
		from  models.ReservationStatus
		table *models.Table
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return lookupError("reservation", "load reservation", err)
		}
		if actor.UserID == 0 || (actor.UserID != res.CustomerID && !actor.CanManage(res.RestaurantID)) {
			return fmt.Errorf("%w: only the customer or restaurant staff can cancel", ErrForbidden)
		}
		if res.Status.Finished() {
			return fmt.Errorf("%w: cannot cancel a %s reservation", ErrInvalidState, res.Status)
		}
		from = res.Status

		now := s.now()
		updates := map[string]interface{}{
			"status":       models.ReservationCancelled,
			"slot_key":     nil,
			"cancelled_by": actor.UserID,
			"cancelled_at": now,
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			updates["cancel_reason"] = reason
			res.CancelReason = &reason
		}
		if err := applyStatus(tx, &res, from, updates, ErrInvalidState); err != nil {
			return err
		}
		res.CancelledBy = &actor.UserID
		res.CancelledAt = &now

		var err error
		table, err = s.cascadeTable(tx, &res, models.ReservationCancelled)
		return err
	})
	if err != nil {
		return txError("cancel reservation", err)
	}

	metrics.IncStatusTransition(string(from), string(models.ReservationCancelled))
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"from":           from,
		"actor":          actor.UserID,
	}).Info("reservation cancelled")

	s.notify(ctx, events.ReservationCancelled, &res)
	if table != nil {
		s.tables.publish(ctx, table)
	}
	return nil
}

// applyStatus writes the new status only if nobody changed it since it was
// read; a lost race surfaces as staleErr.
func applyStatus(tx *gorm.DB, res *models.Reservation, from models.ReservationStatus, updates map[string]interface{}, staleErr error) error {
	result := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", res.ID, from).
		Updates(updates)
	if result.Error != nil {
		return storageError("update reservation", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %d changed concurrently", staleErr, res.ID)
	}
	if to, ok := updates["status"].(models.ReservationStatus); ok {
		res.Status = to
	}
	if _, cleared := updates["slot_key"]; cleared {
		res.SlotKey = nil
	}
	return nil
}

// cascadeTable applies the table side effect of a reservation entering
// status to. It returns the table when its status changed.
//
//	arrived             -> occupied
//	completed           -> available, only from occupied
//	cancelled / no_show -> available, from occupied, or from pending when no
//	                       other pending/confirmed reservation holds the table
//
// confirmed and pending leave the table alone, and manual states such as
// disabled or reserved are never overwritten on release.
func (s *ReservationService) cascadeTable(tx *gorm.DB, res *models.Reservation, to models.ReservationStatus) (*models.Table, error) {
	var table models.Table
	if err := tx.First(&table, res.TableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("reservation %d references missing table %d", res.ID, res.TableID)
			return nil, nil
		}
		return nil, storageError("load table", err)
	}

	target := table.Status
	switch to {
	case models.ReservationArrived:
		target = models.TableOccupied
	case models.ReservationCompleted:
		if table.Status == models.TableOccupied {
			target = models.TableAvailable
		}
	case models.ReservationCancelled, models.ReservationNoShow:
		switch table.Status {
		case models.TableOccupied:
			target = models.TableAvailable
		case models.TablePending:
			var others int64
			if err := tx.Model(&models.Reservation{}).
				Where("table_id = ? AND id <> ? AND status IN ?", table.ID, res.ID,
					[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
				Count(&others).Error; err != nil {
				return nil, storageError("count table reservations", err)
			}
			if others == 0 {
				target = models.TableAvailable
			}
		}
	}

	if target == table.Status {
		return nil, nil
	}
	if err := s.tables.setStatusTx(tx, &table, target); err != nil {
		return nil, err
	}
	return &table, nil
}

// Get returns a reservation visible to its customer and the restaurant staff.
func (s *ReservationService) Get(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := retryRead(ctx, func() error {
		if err := s.db.WithContext(ctx).First(&res, id).Error; err != nil {
			return lookupError("reservation", "load reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actor.UserID != res.CustomerID && !actor.CanManage(res.RestaurantID) {
		return nil, fmt.Errorf("%w: reservation belongs to another customer", ErrForbidden)
	}
	return &res, nil
}

// ListForCustomer returns the customer's reservations, newest slot first.
func (s *ReservationService) ListForCustomer(ctx context.Context, customerID uint, f ReservationFilter) ([]models.Reservation, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid("status", "unknown reservation status %q", *f.Status)
	}
	var list []models.Reservation
	err := retryRead(ctx, func() error {
		q := s.db.WithContext(ctx).Where("customer_id = ?", customerID)
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}
		if f.Upcoming {
			q = q.Where("date >= ?", s.now().Format(dateLayout))
		}
		if err := q.Order("date DESC, time DESC, id DESC").Find(&list).Error; err != nil {
			return storageError("list customer reservations", err)
		}
		return nil
	})
	return list, err
}

// ListForRestaurant is the staff view, in service order.
func (s *ReservationService) ListForRestaurant(ctx context.Context, actor Actor, restaurantID uint, f ReservationFilter) ([]models.Reservation, error) {
	if err := requireManager(actor, restaurantID); err != nil {
		return nil, err
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalid("status", "unknown reservation status %q", *f.Status)
	}
	date := ""
	if f.Date != "" {
		var err error
		if date, err = ParseDate("date", f.Date); err != nil {
			return nil, err
		}
	}

	var list []models.Reservation
	err := retryRead(ctx, func() error {
		q := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
		if date != "" {
			q = q.Where("date = ?", date)
		}
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}
		if f.Upcoming {
			q = q.Where("date >= ?", s.now().Format(dateLayout))
		}
		if err := q.Order("date ASC, time ASC, id ASC").Find(&list).Error; err != nil {
			return storageError("list restaurant reservations", err)
		}
		return nil
	})
	return list, err
}

var errDuplicatePayment = errors.New("payment already recorded")

// ConfirmDeposit applies a payment the provider reported as successful:
// it records the payment, flags the deposit as paid and confirms a pending
// reservation. Replaying the same provider reference is a no-op.
func (s *ReservationService) ConfirmDeposit(ctx context.Context, in DepositConfirmation) (*models.Reservation, error) {
	if strings.TrimSpace(in.Code) == "" {
		return nil, invalid("order_id", "is required")
	}
	if strings.TrimSpace(in.Reference) == "" {
		return nil, invalid("transaction_id", "is required")
	}
	if in.Amount <= 0 {
		return nil, invalid("gross_amount", "must be positive")
	}

	var (
		res       models.Reservation
		from      models.ReservationStatus
		confirmed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", in.Code).First(&res).Error; err != nil {
			return lookupError("reservation", "load reservation by code", err)
		}

		var existing models.Payment
		err := tx.Where("reference = ?", in.Reference).First(&existing).Error
		switch {
		case err == nil:
			if existing.ReservationID != res.ID {
				return fmt.Errorf("%w: payment reference belongs to another reservation", ErrConflict)
			}
			return errDuplicatePayment
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return storageError("load payment", err)
		}

		if res.Status.Finished() {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidState, res.Status)
		}
		if res.DepositPaid {
			return fmt.Errorf("%w: deposit already paid", ErrInvalidState)
		}
		if in.Amount < res.DepositAmount {
			return invalid("gross_amount", "%.2f is below the required deposit %.2f", in.Amount, res.DepositAmount)
		}

		now := s.now()
		payment := models.Payment{
			ReservationID: res.ID,
			Amount:        in.Amount,
			Status:        models.PaymentStatusSuccess,
			Provider:      in.Provider,
			Reference:     in.Reference,
			PaidAt:        now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			if isDuplicateKey(err) {
				return errDuplicatePayment
			}
			return storageError("insert payment", err)
		}

		from = res.Status
		updates := map[string]interface{}{
			"deposit_paid":      true,
			"deposit_amount":    in.Amount,
			"deposit_reference": in.Reference,
			"deposit_paid_at":   now,
		}
		if CanTransition(from, models.ReservationConfirmed) {
			updates["status"] = models.ReservationConfirmed
			confirmed = true
		}
		if err := applyStatus(tx, &res, from, updates, ErrInvalidState); err != nil {
			return err
		}
		res.DepositPaid = true
		res.DepositAmount = in.Amount
		res.DepositReference = &in.Reference
		res.DepositPaidAt = &now
		return nil
	})
	if errors.Is(err, errDuplicatePayment) {
		var current models.Reservation
		if err := s.db.WithContext(ctx).Where("code = ?", in.Code).First(&current).Error; err != nil {
			return nil, lookupError("reservation", "reload reservation", err)
		}
		utils.InfoLogger.Printf("Duplicate deposit notification %s for reservation %s ignored", in.Reference, in.Code)
		return &current, nil
	}
	if err != nil {
		return nil, txError("confirm deposit", err)
	}

	metrics.IncDepositConfirmed()
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"amount":         in.Amount,
		"reference":      in.Reference,
	}).Info("deposit confirmed")

	s.notify(ctx, events.ReservationDepositPaid, &res)
	if confirmed {
		metrics.IncStatusTransition(string(from), string(models.ReservationConfirmed))
		s.notify(ctx, events.ReservationStatusChanged, &res)
	}
	return &res, nil
}

func (s *ReservationService) notify(ctx context.Context, eventType string, res *models.Reservation) {
	s.notifier.Notify(ctx, events.Event{
		Type:         eventType,
		RestaurantID: res.RestaurantID,
		Data:         res,
		OccurredAt:   s.now(),
	})
}
