package secrets

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the app's secrets in the OS keychain.
	KeyringService = "leadhunt"

	SerperAPIKey     = "SERPER_API_KEY"
	SlackBotToken    = "SLACK_BOT_TOKEN"
	TelegramBotToken = "TELEGRAM_BOT_TOKEN"
)

// Known lists the credential names the API and CLI are allowed to store.
var Known = []string{SerperAPIKey, SlackBotToken, TelegramBotToken}

// MissingError reports a credential that is neither in the environment nor the keyring.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Missing %s environment variable.", e.Name)
}

// IsKnown reports whether name is one of the stored credential names.
func IsKnown(name string) bool {
	for _, k := range Known {
		if k == name {
			return true
		}
	}
	return false
}

// Lookup returns the credential from the environment, then from the keyring.
func Lookup(name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		// a locked or absent keychain is the same as no value
		log.Printf("[secrets] keyring get name=%s err=%v", name, err)
	}
	return "", &MissingError{Name: name}
}

func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	err := keyring.Delete(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
