package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Operator is a staff account allowed to enroll subjects and read attendance
// reports. Kiosk authentication itself is unauthenticated; only the management
// surface is gated.
type Operator struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"`
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Operator) TableName() string {
	return "operators"
}

// SetPassword hashes the given password and sets it on the operator.
func (o *Operator) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = string(hashed)
	return nil
}

// CheckPassword compares the given password with the stored hash.
func (o *Operator) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// OperatorSession is a bearer token issued at login. Tokens are opaque UUIDs;
// expiry is checked on every authenticated request.
type OperatorSession struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OperatorID uint   `gorm:"not null;index" json:"operator_id"`
	Token      string `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt  int64  `gorm:"not null" json:"expires_at"`
	CreatedAt  int64  `gorm:"not null" json:"created_at"`

	Operator *Operator `gorm:"foreignKey:OperatorID" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (OperatorSession) TableName() string {
	return "operator_sessions"
}
