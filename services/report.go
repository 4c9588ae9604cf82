package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

const (
	reportSheet    = "Reservations"
	maxExportRange = 366 * 24 * time.Hour
)

var reportColumns = []string{
	"Code", "Date", "Time", "Table", "Guests", "Status", "Customer",
	"Occasion", "Deposit", "Deposit Paid", "Cancel Reason", "Created At",
}

// ReportService builds the dashboard summary and the reservation export.
type ReportService struct {
	db     *gorm.DB
	tables *TableStore
	now    func() time.Time
}

func NewReportService(db *gorm.DB, tables *TableStore) *ReportService {
	return &ReportService{db: db, tables: tables, now: time.Now}
}

type DashboardStats struct {
	Date              string                             `json:"date"`
	TableStats        map[models.TableStatus]int64       `json:"table_stats"`
	TodayReservations map[models.ReservationStatus]int64 `json:"today_reservations"`
	UpcomingCount     int64                              `json:"upcoming_count"`
	WaitingParties    int64                              `json:"waiting_parties"`
	DepositsToday     float64                            `json:"deposits_today"`
}

func (s *ReportService) Dashboard(ctx context.Context, actor Actor, restaurantID uint) (*DashboardStats, error) {
	restaurantID, err := ScopeRestaurant(actor, restaurantID)
	if err != nil {
		return nil, err
	}

	tableStats, err := s.tables.Stats(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(dateLayout)
	stats := &DashboardStats{
		Date:              today,
		TableStats:        tableStats,
		TodayReservations: make(map[models.ReservationStatus]int64),
	}

	err = retryRead(ctx, func() error {
		db := s.db.WithContext(ctx)

		var rows []struct {
			Status models.ReservationStatus
			Total  int64
		}
		if err := db.Model(&models.Reservation{}).
			Select("status, COUNT(*) AS total").
			Where("restaurant_id = ? AND date = ?", restaurantID, today).
			Group("status").
			Scan(&rows).Error; err != nil {
			return storageError("reservation stats", err)
		}
		for _, r := range rows {
			stats.TodayReservations[r.Status] = r.Total
		}

		if err := db.Model(&models.Reservation{}).
			Where("restaurant_id = ? AND date > ? AND status IN ?", restaurantID, today,
				[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
			Count(&stats.UpcomingCount).Error; err != nil {
			return storageError("upcoming reservations", err)
		}

		if err := db.Model(&models.WaitlistEntry{}).
			Where("restaurant_id = ? AND status IN ?", restaurantID,
				[]models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistNotified}).
			Count(&stats.WaitingParties).Error; err != nil {
			return storageError("waitlist stats", err)
		}

		start, _ := time.ParseInLocation(dateLayout, today, s.now().Location())
		if err := db.Model(&models.Payment{}).
			Joins("JOIN reservations ON reservations.id = payments.reservation_id").
			Where("reservations.restaurant_id = ? AND payments.status = ? AND payments.paid_at >= ?",
				restaurantID, models.PaymentStatusSuccess, start).
			Select("COALESCE(SUM(payments.amount), 0)").
			Row().Scan(&stats.DepositsToday); err != nil {
			return storageError("deposit stats", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ExportReservations writes every reservation of the restaurant between
// from and to (inclusive) as an .xlsx workbook.
func (s *ReportService) ExportReservations(ctx context.Context, actor Actor, restaurantID uint, from, to string, w io.Writer) error {
	restaurantID, err := ScopeRestaurant(actor, restaurantID)
	if err != nil {
		return err
	}
	if from, err = ParseDate("from", from); err != nil {
		return err
	}
	if to, err = ParseDate("to", to); err != nil {
		return err
	}
	start, _ := time.Parse(dateLayout, from)
	end, _ := time.Parse(dateLayout, to)
	if end.Before(start) {
		return invalid("to", "must not be before from")
	}
	if end.Sub(start) > maxExportRange {
		return invalid("to", "range must not exceed one year")
	}

	type exportRow struct {
		models.Reservation
		TableNumber  string
		CustomerName string
	}
	var rows []exportRow
	err = retryRead(ctx, func() error {
		if err := s.db.WithContext(ctx).
			Table("reservations").
			Select("reservations.*, tables.number AS table_number, users.name AS customer_name").
			Joins("LEFT JOIN tables ON tables.id = reservations.table_id").
			Joins("LEFT JOIN users ON users.id = reservations.customer_id").
			Where("reservations.restaurant_id = ? AND reservations.date BETWEEN ? AND ?", restaurantID, from, to).
			Order("reservations.date ASC, reservations.time ASC, reservations.id ASC").
			Scan(&rows).Error; err != nil {
			return storageError("export reservations", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", reportSheet)

	if err := writeRow(f, 1, toCells(reportColumns)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = f.SetCellStyle(reportSheet, "A1", endCell, style)
	}

	for i, r := range rows {
		if err := writeRow(f, i+2, []interface{}{
			r.Code, r.Date, r.Time, r.TableNumber, r.GuestCount, string(r.Status), r.CustomerName,
			deref(r.Occasion), r.DepositAmount, r.DepositPaid, deref(r.CancelReason),
			r.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	utils.InfoLogger.Printf("Exported %d reservations for restaurant %d (%s..%s)", len(rows), restaurantID, from, to)
	return nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reportSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
