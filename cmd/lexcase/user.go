package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"lexcase_api_go/config"
	"lexcase_api_go/db"
	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var createUserCommand = &cli.Command{
	Name:  "create-user",
	Usage: "Create a user of any role, including admin",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Display name (prompted when empty)"},
		&cli.StringFlag{Name: "email", Usage: "Login email (prompted when empty)"},
		&cli.StringFlag{Name: "role", Value: models.RoleAdmin, Usage: "client, advocate, paralegal or admin"},
		&cli.StringFlag{Name: "phone"},
	},
	Action: createUser,
}

func createUser(cCtx *cli.Context) error {
	reader := bufio.NewReader(os.Stdin)
	name := flagOrPrompt(reader, cCtx.String("name"), "Name: ")
	email := flagOrPrompt(reader, cCtx.String("email"), "Email: ")

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	return withDatabase(func(cfg *config.Config) error {
		users := services.NewUserService(db.DB, nil, cfg.AppURL)
		user, err := users.Create(context.Background(), services.RegisterInput{
			Name:     name,
			Email:    email,
			Password: string(passwordBytes),
			Role:     cCtx.String("role"),
			Phone:    cCtx.String("phone"),
		})
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("✓ User created successfully!")
		fmt.Printf("  ID: %s\n", user.ID)
		fmt.Printf("  Name: %s\n", user.Name)
		fmt.Printf("  Email: %s\n", user.Email)
		fmt.Printf("  Role: %s\n", user.Role)
		return nil
	})
}

func flagOrPrompt(reader *bufio.Reader, value, prompt string) string {
	if value != "" {
		return value
	}
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
