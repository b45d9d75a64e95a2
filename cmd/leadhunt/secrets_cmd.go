package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"leadhunt-engine/internal/secrets"
)

// cmdSecrets handles "secrets set NAME [VALUE]" and "secrets delete NAME".
// NAME is one of secrets.Known or "imap" for the mailbox password. A missing
// VALUE is read from stdin so it stays out of shell history.
func cmdSecrets(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("secrets", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: leadhunt secrets set|delete NAME [VALUE]; NAME is imap or one of %s", strings.Join(secrets.Known, ", "))
	}
	action, name := rest[0], rest[1]
	if name != "imap" && !secrets.IsKnown(name) {
		return fmt.Errorf("unknown secret %q", name)
	}

	account := ""
	if name == "imap" {
		cfg, err := cf.load()
		if err != nil {
			return err
		}
		account = secrets.IMAPKeyringAccount(cfg.Email.Username, cfg.Email.IMAPHost)
	}

	switch action {
	case "set":
		value := ""
		if len(rest) > 2 {
			value = rest[2]
		} else {
			fmt.Fprint(os.Stderr, "value: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read value: %w", err)
			}
			value = strings.TrimSpace(line)
		}
		var err error
		if account != "" {
			err = secrets.SetIMAPPassword(account, value)
		} else {
			err = secrets.Set(name, value)
		}
		if err != nil {
			return err
		}
		pterm.Success.Printf("stored %s\n", name)
	case "delete":
		var err error
		if account != "" {
			err = secrets.DeleteIMAPPassword(account)
		} else {
			err = secrets.Delete(name)
		}
		if err != nil {
			return err
		}
		pterm.Success.Printf("deleted %s\n", name)
	default:
		return errors.New("secrets: action must be set or delete")
	}
	return nil
}
