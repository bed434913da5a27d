package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/config"
	"github.com/oggyb/sms-gateway/internal/db/gormdb"
	messagegorm "github.com/oggyb/sms-gateway/internal/repository/gorm/message"
	outboxgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/outbox"
	tenantgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/tenant"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()

	cfg := config.New()

	gormAdapter, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("[Seed] Failed to connect to database: %v", err)
	}
	log.Printf("[Seed] Connected to database %q", cfg.DB.Name)

	rawDB := gormAdapter.Conn().(*gorm.DB)
	if err := rawDB.AutoMigrate(&tenantgorm.TenantModel{}, &messagegorm.MessageModel{}, &outboxgorm.OutboxModel{}); err != nil {
		log.Fatalf("[Seed] AutoMigrate failed: %v", err)
	}
	log.Println("[Seed] Tables are up to date (AutoMigrate completed).")

	// Seed a handful of prepaid tenants with known API keys for local/manual
	// testing against the express/regular admission paths.
	const seedCount = 3

	repo := tenantgorm.NewRepository(gormAdapter)

	for i := 0; i < seedCount; i++ {
		id := uuid.New()

		t, err := repo.Create(ctx, id)
		if err != nil {
			log.Fatalf("[Seed] Failed to create tenant #%d: %v", i+1, err)
		}

		if _, err := repo.Charge(ctx, t.ID, 1000); err != nil {
			log.Fatalf("[Seed] Failed to fund tenant #%d: %v", i+1, err)
		}

		log.Printf("[Seed] Created tenant #%d: id=%s api_key=%s balance=1000", i+1, t.ID, t.APIKey)
	}

	log.Printf("[Seed] Done. Seeded %d prepaid tenants.", seedCount)
}
