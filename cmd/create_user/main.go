package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/application/usecase/user_management"
	"github.com/gudson/kpi/infrastructure/bootstrap"
	"github.com/gudson/kpi/infrastructure/config"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/password"
)

func main() {
	username := flag.String("username", "admin", "login name")
	userPassword := flag.String("password", "admin123", "clear-text password, hashed before storage")
	fullName := flag.String("name", "Administrateur Système", "display name")
	email := flag.String("email", "admin@gudson.fr", "contact email")
	role := flag.String("role", "Admin", "Admin, Acheteur or Consultant")
	perms := flag.String("permissions", "lecture,ecriture,suppression,gestion_utilisateurs", "comma separated permissions")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadTooling()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	credentials, closeCredentials, err := bootstrap.OpenCredentialStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}
	defer closeCredentials()

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{Level: cfg.LogLevel, Format: "text", ServiceName: "create-user"})
	users := user_management.NewUserManagementUseCase(
		credentials,
		password.NewBcryptPasswordService(cfg.BcryptCost),
		authorization.NewGate(structuredLogger),
		structuredLogger,
	)

	req := inbound.CreateUserRequest{
		Username:    *username,
		Password:    *userPassword,
		FullName:    *fullName,
		Email:       *email,
		Role:        *role,
		Permissions: splitList(*perms),
	}
	if err := users.CreateUser(ctx, req); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User saved: username=%s role=%s permissions=%s\n", req.Username, req.Role, strings.Join(req.Permissions, ","))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
