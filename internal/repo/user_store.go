package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"annadan/internal/auth"
	"annadan/internal/models"
)

// UserStore — учётные записи поверх GORM. Ошибки отдаёт в терминах
// пакета auth, чтобы сервис не знал про gorm.ErrRecordNotFound.
type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	// email уже нормализован сервисом; дубликат ловим до вставки,
	// uniqueIndex остаётся страховкой от гонки
	var cnt int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", u.Email).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return auth.ErrDuplicateEmail
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete — каскад на уровне приложения: пожертвования и выдачи
// пользователя уходят в той же транзакции, что и сама учётка.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Donation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Distribution{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auth.ErrUserNotFound
		}
		return nil
	})
}
