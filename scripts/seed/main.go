package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/client"
)

type config struct {
	Server   string `envconfig:"SERVER" default:"http://localhost:8080"`
	Vendors  int    `envconfig:"VENDORS" default:"5"`
	Products int    `envconfig:"PRODUCTS" default:"20"`
	Orders   int    `envconfig:"ORDERS" default:"15"`
	Random   uint64 `envconfig:"RANDOM_SEED" default:"0"`
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	var cfg config
	if err := envconfig.Process("seed", &cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}
	api, err := client.New(cfg.Server)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s := newSeeder(api, cfg.Random)
	fmt.Println("→ Seeding stockroom at", cfg.Server)
	report, err := s.run(ctx, cfg.Vendors, cfg.Products, cfg.Orders)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("✓ %d vendors, %d products, %d orders (%d received), %d payments\n",
		report.Vendors, report.Products, report.Orders, report.Received, report.Payments)
}
