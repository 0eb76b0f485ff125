// Command seed populates a development database with demo users and a
// small catalog. It is idempotent: existing rows are left untouched.
package main

import (
	"github.com/Adjelson/caixa-facil-Adjelson/internal/config"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/infra"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if err := seedUsers(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed users")
	}
	if err := seedProducts(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed products")
	}
	log.Info().Msg("seed complete")
}

func seedUsers(db *gorm.DB) error {
	users := []struct {
		username, name, password, role string
	}{
		{"admin", "Administrator", "admin12345", model.RoleAdmin},
		{"maria", "Maria Souza", "caixa12345", model.RoleCashier},
		{"joao", "Joao Lima", "caixa12345", model.RoleCashier},
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			return err
		}
		user := model.User{
			Username:     u.username,
			Name:         u.name,
			PasswordHash: string(hash),
			Role:         u.role,
			Active:       true,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(db *gorm.DB) error {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	products := []model.Product{
		{Barcode: "7891000100103", Name: "Leite Integral 1L", Price: price("5.49"), CostPrice: price("3.80"), Stock: 120, MinStock: 24, Active: true},
		{Barcode: "7891910000197", Name: "Acucar Refinado 1kg", Price: price("4.29"), CostPrice: price("2.90"), Stock: 80, MinStock: 20, Active: true},
		{Barcode: "7894900011517", Name: "Refrigerante 2L", Price: price("8.99"), CostPrice: price("5.50"), Stock: 60, MinStock: 12, Active: true},
		{Barcode: "7891031404706", Name: "Cafe Torrado 500g", Price: price("16.90"), CostPrice: price("11.20"), Stock: 40, MinStock: 10, Active: true},
		{Barcode: "7896004000019", Name: "Arroz Branco 5kg", Price: price("24.50"), CostPrice: price("18.00"), Stock: 35, MinStock: 8, Active: true},
	}
	for i := range products {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
