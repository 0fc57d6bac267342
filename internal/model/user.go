package model

import "time"

type Role string

const (
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
)

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageDutch   Language = "dutch"
	LanguageFrench  Language = "french"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageDutch, LanguageFrench:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	Initials     string    `json:"initials"`
	Language     Language  `json:"language"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
