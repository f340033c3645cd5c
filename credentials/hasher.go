package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and checks salted one-way password hashes. The bcrypt output
// embeds its own salt and cost, so a stored hash is all Verify needs.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher using the given bcrypt cost. A cost of zero selects
// bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash hashes password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bts, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// Verify reports whether password matches hashedPassword. An empty or malformed
// hash never matches.
func (h *Hasher) Verify(password string, hashedPassword string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
