package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brandyscotchland/timminet/auth"
	"github.com/brandyscotchland/timminet/cmd/timminet/config"
	"github.com/brandyscotchland/timminet/storage/model"
)

var rootCmd = &cobra.Command{
	Use:   "timminetctl",
	Short: "timminetctl manages console accounts from the host",
	Long:  "timminetctl manages console accounts from the host",
}

var configFile string
var password string

var accountStorage model.AccountStore
var authService *auth.Service

func loadConfig() error {
	config.Load(configFile)
	log.Println("Loaded Config")
	c := config.Get()

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.Fatal(err)
	}
	accountStorage = backs.Accounts
	authService, err = auth.NewService(backs.Accounts, auth.PasswordPolicy{HashCost: c.Auth.HashCost})
	return err
}

func readPassword() (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username>",
	Short: "create an account with the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		pw, err := readPassword()
		if err != nil {
			return err
		}
		acct, err := authService.Create(args[0], pw, model.RoleAdmin)
		if err != nil {
			return err
		}
		log.Printf("created admin account '%s'", acct.Username)
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <username>",
	Short: "clear an account's lockout state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if err := authService.Unlock(args[0]); err != nil {
			return err
		}
		log.Printf("unlocked account '%s'", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list all console accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		accounts, err := accountStorage.Load()
		if err != nil {
			return err
		}
		for _, a := range accounts {
			state := "active"
			if !a.IsActive {
				state = "disabled"
			}
			lastLogin := "never"
			if a.LastLogin != nil {
				lastLogin = a.LastLogin.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-20s %-6s %-8s last login: %s\n", a.Username, a.Role, state, lastLogin)
		}
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	createAdminCmd.Flags().StringVarP(&password, "password", "p", "", "the password for the new account; prompted when omitted")
	rootCmd.AddCommand(createAdminCmd, unlockCmd, listCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
