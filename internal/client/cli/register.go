package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/avoronins/inkpost/internal/client/api"
	"github.com/avoronins/inkpost/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.SignUp(ctx, userName, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyExists):
			log.Printf("Username already taken")
		case errors.Is(err, common.ErrValidation):
			log.Printf("Registration failed: %s", err.Error())
		case errors.Is(err, api.ErrUnavailable):
			log.Printf("Server unavailable")
		default:
			log.Printf("Registration failed: %s", err.Error())
		}
		return err
	}

	log.Printf("Registered and logged in as %s", user.UserName)
	return nil
}
