package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/tgrelay/relaybot/internal/platform/config"
)

// ErrSignupNotSupported indicates that signup is not supported.
var ErrSignupNotSupported = errors.New("signup not supported")

// userAuth implements the interactive user-account login: phone and 2FA
// password come from config when set, the login code always from stdin.
type userAuth struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

func userAuthFlow(cfg *config.Config, logger *zerolog.Logger) auth.Flow {
	return auth.NewFlow(&userAuth{cfg: cfg, logger: logger}, auth.SendCodeOptions{})
}

func (u *userAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	fmt.Print("Enter code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(code), nil
}

func (u *userAuth) Phone(ctx context.Context) (string, error) {
	var phone string

	var err error

	if u.cfg.TGPhone != "" {
		phone = u.cfg.TGPhone
	} else {
		fmt.Print("Enter phone: ")

		phone, err = bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", err
		}
	}

	phone = sanitizePhone(phone)
	u.logger.Info().Str("phone", maskPhone(phone)).Msg("Using phone number")

	return phone, nil
}

func (u *userAuth) Password(ctx context.Context) (string, error) {
	var password string

	var err error

	if u.cfg.TG2FAPassword != "" {
		password = u.cfg.TG2FAPassword
	} else {
		fmt.Print("Enter 2FA password: ")

		password, err = bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", err
		}
	}

	return strings.TrimSpace(password), nil
}

func (u *userAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return nil
}

func (u *userAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, ErrSignupNotSupported
}

func sanitizePhone(phone string) string {
	var sb strings.Builder

	phone = strings.TrimSpace(phone)

	if strings.HasPrefix(phone, "+") {
		sb.WriteByte('+')

		phone = phone[1:]
	}

	for _, char := range phone {
		if char >= '0' && char <= '9' {
			sb.WriteRune(char)
		}
	}

	return sb.String()
}

func maskPhone(phone string) string {
	if len(phone) < 7 {
		return "****"
	}

	return phone[:3] + "****" + phone[len(phone)-2:]
}
