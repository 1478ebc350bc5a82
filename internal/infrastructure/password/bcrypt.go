package password

import (
	"errors"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"golang.org/x/crypto/bcrypt"
)

// Hasher хэширует пароли кассиров bcrypt'ом.
type Hasher struct {
	cost int
}

// NewHasher возвращает Hasher с заданной стоимостью; 0 означает bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	return string(hash), nil
}

// Compare сообщает, подходит ли пароль к хэшу. Ошибка: только для повреждённого хэша.
func (h *Hasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
}
