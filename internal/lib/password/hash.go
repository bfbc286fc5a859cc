// Package password реализует хеширование и проверку паролей через bcrypt.
//
// Открытый пароль никогда не сохраняется: в хранилище попадает только результат GetHash.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/saaskit/internal/errs"
)

// MinLength минимальная длина пароля при регистрации и сбросе.
const MinLength = 8

// MaxLength предел bcrypt в байтах. Более длинный пароль отклоняется как ошибка валидации.
const MaxLength = 72

// Cost стоимость bcrypt. Сохранённые хеши созданы с тем же значением.
const Cost = 10

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Несовпадение возвращается как errs.ErrInvalidCredentials, остальные сбои bcrypt оборачиваются.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	return fmt.Errorf("%s: %w", op, err)
}
