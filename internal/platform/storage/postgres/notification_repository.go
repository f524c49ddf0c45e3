package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campusvote/halalan/internal/domain"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ActorID     string    `gorm:"column:user_id"`
	RecipientID string    `gorm:"column:recipient_id;index"`
	Title       string    `gorm:"column:title"`
	Message     string    `gorm:"column:message"`
	Type        string    `gorm:"column:type"`
	Link        string    `gorm:"column:link"`
	IsRead      bool      `gorm:"column:is_read"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string {
	return "notification"
}

func (m notificationModel) toDomain() domain.Notification {
	return domain.Notification{
		ID:          domain.NotificationID(m.ID),
		ActorID:     domain.ProfileID(m.ActorID),
		RecipientID: domain.ProfileID(m.RecipientID),
		Title:       m.Title,
		Message:     m.Message,
		Type:        m.Type,
		Link:        m.Link,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

func fromDomainNotification(n domain.Notification) notificationModel {
	return notificationModel{
		ID:          string(n.ID),
		ActorID:     string(n.ActorID),
		RecipientID: string(n.RecipientID),
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		Link:        n.Link,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) error {
	model := fromDomainNotification(n)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm notification: insert: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID domain.ProfileID) ([]domain.Notification, error) {
	var models []notificationModel
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm notification: list: %w", err)
	}

	result := make([]domain.Notification, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id domain.NotificationID) error {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("gorm notification: mark read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID domain.ProfileID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("gorm notification: mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NotificationRepository) DeleteRead(ctx context.Context, recipientID domain.ProfileID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND is_read = ?", recipientID, true).
		Delete(&notificationModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm notification: delete read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var _ domain.NotificationRepository = (*NotificationRepository)(nil)
