package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// IMAPPasswordEnv overrides the keyring entry for the mailbox password.
const IMAPPasswordEnv = "LEADHUNT_IMAP_PASSWORD"

// IMAPKeyringAccount names the keyring entry for a mailbox login.
func IMAPKeyringAccount(username, host string) string {
	return fmt.Sprintf("leadhunt:imap:%s@%s", strings.TrimSpace(username), strings.TrimSpace(host))
}

func GetIMAPPassword(account string) (string, error) {
	if pw, err := Lookup(IMAPPasswordEnv); err == nil {
		return pw, nil
	}
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", &MissingError{Name: IMAPPasswordEnv}
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteIMAPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
