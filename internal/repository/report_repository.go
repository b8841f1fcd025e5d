package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/repository/common"
)

var ErrReportNotFound = fmt.Errorf("report %w", common.ErrNotFound)

const reportColumns = `id, user_id, item_type, description, location, image_ref, contact, status,
	moderation_chat_id, moderation_message_id, decided_by, decided_at, created_at`

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет новую заявку в статусе pending и заполняет ID, Status, CreatedAt.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := r.db.Rebind(`
		INSERT INTO reports (user_id, item_type, description, location, contact, image_ref, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, status
	`)

	createdAt := time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		report.UserID, report.Kind, report.Description, report.Location, report.Contact, report.ImageRef,
		models.ReportStatusPending, createdAt,
	).Scan(&report.ID, &report.Status)
	if err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	report.CreatedAt = createdAt
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	return common.GetByID[models.Report](ctx, r.db, "reports", id, ErrReportNotFound)
}

// SetStatus безусловно меняет статус. Для решений модераторов используется TransitionStatus.
func (r *ReportRepository) SetStatus(ctx context.Context, id int64, status models.ReportStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE reports SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("report repository: set status %w", err)
	}
	return common.RequireAffected(res, ErrReportNotFound)
}

// TransitionStatus атомарно переводит заявку из from в to.
// Возвращает false, если статус уже успел измениться.
func (r *ReportRepository) TransitionStatus(ctx context.Context, id int64, from, to models.ReportStatus, decidedBy string, at time.Time) (bool, error) {
	query := r.db.Rebind(`
		UPDATE reports
		SET status = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`)

	res, err := r.db.ExecContext(ctx, query, to, decidedBy, at, id, from)
	if err != nil {
		return false, fmt.Errorf("report repository: transition status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("report repository: rows affected %w", err)
	}
	return affected == 1, nil
}

// SetModerationMessage запоминает сообщение модераторам, чтобы позже убрать с него кнопки.
func (r *ReportRepository) SetModerationMessage(ctx context.Context, id int64, chatID int64, messageID int) error {
	query := r.db.Rebind(`UPDATE reports SET moderation_chat_id = ?, moderation_message_id = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, chatID, messageID, id)
	if err != nil {
		return fmt.Errorf("report repository: set moderation message %w", err)
	}
	return common.RequireAffected(res, ErrReportNotFound)
}

func (r *ReportRepository) ListPending(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	query := r.db.Rebind(`SELECT ` + reportColumns + ` FROM reports WHERE status = ? ORDER BY id ASC`)
	if err := r.db.SelectContext(ctx, &reports, query, models.ReportStatusPending); err != nil {
		return nil, fmt.Errorf("report repository: list pending %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID int64) ([]models.Report, error) {
	reports := []models.Report{}
	query := r.db.Rebind(`SELECT ` + reportColumns + ` FROM reports WHERE user_id = ? ORDER BY id DESC`)
	if err := r.db.SelectContext(ctx, &reports, query, userID); err != nil {
		return nil, fmt.Errorf("report repository: list by user %w", err)
	}
	return reports, nil
}
