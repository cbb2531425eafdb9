package domain

import "time"

type RecoveryCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"codigo"`
	ExpiresAt time.Time `json:"expiraEm"`
	Used      bool      `json:"usado"`
}

func (r *RecoveryCode) IsValid(code string, now time.Time) bool {
	return !r.Used && r.Code == code && now.Before(r.ExpiresAt)
}

type RecoveryRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"codigo"`
	NewPassword string `json:"novaSenha"`
}
