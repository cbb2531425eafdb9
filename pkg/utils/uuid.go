package utils

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode gera um código curto para recuperação de senha
func GenerateCode() (string, error) {
	return gonanoid.Generate(characters, 6)
}

func NewID() string {
	return uuid.New().String()
}
