package models

import (
	"strings"
	"time"
)

// Report описывает заявку о потерянном или найденном предмете.
type Report struct {
	ID                  int64        `db:"id" json:"id"`
	UserID              int64        `db:"user_id" json:"user_id"`
	Kind                ReportKind   `db:"item_type" json:"kind"`
	Description         string       `db:"description" json:"description"`
	Location            string       `db:"location" json:"location"`
	ImageRef            *string      `db:"image_ref" json:"image_ref,omitempty"`
	Contact             string       `db:"contact" json:"contact"`
	Status              ReportStatus `db:"status" json:"status"`
	ModerationChatID    *int64       `db:"moderation_chat_id" json:"-"`
	ModerationMessageID *int         `db:"moderation_message_id" json:"-"`
	DecidedBy           *string      `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt           *time.Time   `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
}

// HasImage сообщает, приложено ли к заявке изображение.
func (r *Report) HasImage() bool {
	return r.ImageRef != nil && strings.TrimSpace(*r.ImageRef) != ""
}
