package model

import "time"

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderTransgender Gender = "transgender"
	GenderOther       Gender = "other"
)

// User is the single persisted identity record. Email, Phone and GoogleID are
// pointers so an absent value is stored as NULL (or omitted in mongo) and never
// takes part in the unique indexes.
type User struct {
	ID                   string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" bson:"_id" json:"id"`
	Name                 string     `bson:"name,omitempty" json:"name,omitempty"`
	Email                *string    `gorm:"uniqueIndex:idx_users_email" bson:"email,omitempty" json:"email,omitempty"`
	Phone                *string    `gorm:"uniqueIndex:idx_users_phone" bson:"phone,omitempty" json:"phone,omitempty"`
	Password             string     `bson:"password,omitempty" json:"-"`
	DateOfBirth          *time.Time `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender               Gender     `gorm:"check:gender IN ('','male','female','transgender','other')" bson:"gender,omitempty" json:"gender,omitempty"`
	PhotoURL             string     `bson:"photoURL" json:"photoURL"`
	GoogleID             *string    `gorm:"uniqueIndex:idx_users_google_id" bson:"googleId,omitempty" json:"-"`
	IsPhoneVerified      bool       `gorm:"not null;default:false" bson:"isPhoneVerified" json:"isPhoneVerified"`
	IsEmailVerified      bool       `gorm:"not null;default:false" bson:"isEmailVerified" json:"isEmailVerified"`
	RegistrationComplete bool       `gorm:"not null;default:false" bson:"registrationComplete" json:"registrationComplete"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"index" bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether a password hash is stored on the record.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

func (u *User) EmailValue() string {
	return deref(u.Email)
}

func (u *User) PhoneValue() string {
	return deref(u.Phone)
}

func (u *User) GoogleIDValue() string {
	return deref(u.GoogleID)
}

// StringPtr returns nil for the empty string so optional unique fields stay sparse.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
