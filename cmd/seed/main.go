package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"convohub/domain"
	"convohub/infrastructure"
	"convohub/repositories"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	PostgresURL string `envconfig:"POSTGRES_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Grants tenant memberships for local and dev environments.
// Each argument is user_uuid=tenant1,tenant2,...
//
//	seed 6f1a...=1,2,3 0e9f...=2,3
func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatal("config error: ", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: seed user_uuid=tenant[,tenant...] ...")
		os.Exit(2)
	}

	ctx := context.Background()
	pg, err := infrastructure.NewPostgresClient(ctx, config.PostgresURL)
	if err != nil {
		log.Fatal("postgres: ", err)
	}
	defer pg.Close()

	index := repositories.NewPostgresMembershipIndex(pg.Pool, logger)

	for _, arg := range os.Args[1:] {
		userRaw, tenantsRaw, found := strings.Cut(arg, "=")
		if !found {
			log.Fatalf("malformed grant %q, expected user=tenants", arg)
		}
		userID, err := uuid.Parse(userRaw)
		if err != nil {
			log.Fatalf("malformed user id %q: %v", userRaw, err)
		}

		for _, tenantRaw := range strings.Split(tenantsRaw, ",") {
			tenant, err := strconv.ParseInt(tenantRaw, 10, 64)
			if err != nil {
				log.Fatalf("malformed tenant id %q: %v", tenantRaw, err)
			}
			if err := index.Grant(ctx, userID, domain.TenantID(tenant)); err != nil {
				log.Fatalf("granting %s to tenant %d: %v", userID, tenant, err)
			}
			logger.Info("Membership granted", "user", userID, "tenant", tenant)
		}
	}
}
