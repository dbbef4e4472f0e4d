package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/application/usecase/user_management"
	"github.com/gudson/kpi/infrastructure/bootstrap"
	"github.com/gudson/kpi/infrastructure/config"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/password"
)

// demoAccounts are the three accounts the dashboard shipped with.
var demoAccounts = []inbound.CreateUserRequest{
	{
		Username:    "admin",
		Password:    "admin123",
		FullName:    "Administrateur Système",
		Email:       "admin@gudson.fr",
		Role:        "Admin",
		Permissions: []string{"lecture", "ecriture", "suppression", "gestion_utilisateurs"},
	},
	{
		Username:    "acheteur1",
		Password:    "achat123",
		FullName:    "Marie Martin",
		Email:       "marie.martin@gudson.fr",
		Role:        "Acheteur",
		Permissions: []string{"lecture", "ecriture"},
	},
	{
		Username:    "consultant1",
		Password:    "consul123",
		FullName:    "Pierre Durand",
		Email:       "pierre.durand@gudson.fr",
		Role:        "Consultant",
		Permissions: []string{"lecture"},
	},
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadTooling()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	credentials, closeCredentials, err := bootstrap.OpenCredentialStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open credential store: %v", err)
	}
	defer closeCredentials()

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{Level: cfg.LogLevel, Format: "text", ServiceName: "seed"})
	users := user_management.NewUserManagementUseCase(
		credentials,
		password.NewBcryptPasswordService(cfg.BcryptCost),
		authorization.NewGate(structuredLogger),
		structuredLogger,
	)

	for _, account := range demoAccounts {
		if err := users.CreateUser(ctx, account); err != nil {
			log.Fatalf("failed to seed %s: %v", account.Username, err)
		}
		fmt.Printf("Seeded user: username=%s password=%s role=%s\n", account.Username, account.Password, account.Role)
	}
}
