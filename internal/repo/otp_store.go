package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"annadan/internal/models"
)

// OTPStore — одноразовые коды поверх GORM. Живой код на email максимум
// один: Replace удаляет старые записи и вставляет новую одной
// транзакцией. Фоновой чистки нет — срок перепроверяется при чтении.
type OTPStore struct{ db *gorm.DB }

func NewOTPStore(db *gorm.DB) *OTPStore { return &OTPStore{db: db} }

func (s *OTPStore) Replace(ctx context.Context, rec *models.OTPRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", rec.Email).Delete(&models.OTPRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

func (s *OTPStore) Find(ctx context.Context, email string) (*models.OTPRecord, error) {
	var rec models.OTPRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.OTPRecord{}).Error
}
