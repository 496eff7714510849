package auth

import (
	"crypto/rand"
	"encoding/hex"

	"schedule_api/internal/models"
	"schedule_api/internal/storage"
)

// ServiceAccount возвращает сервисный аккаунт с заданным именем, создавая
// его при необходимости. Такие аккаунты становятся авторами записей,
// созданных автоматическим импортом, и не имеют пригодного пароля.
func ServiceAccount(name string) (*models.User, error) {
	var user models.User
	err := storage.DB.Where("email = ? AND is_service = true", name+"@service.local").First(&user).Error
	if err == nil {
		return &user, nil
	}

	// Непригодный для входа пароль: случайные байты вместо bcrypt-хэша.
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	user = models.User{
		Name:         name,
		Surname:      "service",
		Email:        name + "@service.local",
		PasswordHash: "!" + hex.EncodeToString(buf),
		IsService:    true,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
