// Seeds the database with sample records, including a few deliberate
// near-duplicates so detection has something to find. Refuses to run against
// a non-empty database.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/veridata/mdm/internal/config"
	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	if envPath := os.Getenv("MDM_DB_PATH"); envPath != "" {
		cfg.Database.Path = envPath
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	for _, name := range model.CollectionNames {
		n, err := st.CountActive(ctx, name)
		if err != nil {
			log.Fatalf("Failed to count %s: %v", name, err)
		}
		if n > 0 {
			log.Fatalf("Database already has %d %s, refusing to seed", n, name)
		}
	}

	seed := map[string][]map[string]string{
		model.Customers: {
			{"name": "João Silva Santos", "tax_id": "529.982.247-25", "email": "joao.silva@email.com"},
			{"name": "Joao Silva Santos", "tax_id": "529.982.247-25", "email": "jsilva@outro.com"},
			{"name": "Maria Oliveira Ltda", "tax_id": "11.222.333/0001-81", "email": "contato@mariaoliveira.com"},
			{"name": "Pedro Costa", "tax_id": "168.995.350-09", "email": "pedro.costa@email.com"},
		},
		model.Products: {
			{"name": "Notebook Dell Inspiron", "code": "NB-001", "category": "Informática"},
			{"name": "Notebook Dell Inspiron 15", "code": "NB-001", "category": "Informática"},
			{"name": "Mouse Sem Fio Logitech", "code": "MS-010", "category": "Informática"},
			{"name": "Cadeira Ergonômica", "code": "CD-100", "category": "Móveis"},
		},
		model.Suppliers: {
			{"name": "TechMart Distribuidora", "tax_id": "11.222.333/0001-81", "email": "vendas@techmart.com"},
			{"name": "Techmart Distribuidora SA", "tax_id": "11.222.333/0001-81", "email": "comercial@techmart.com"},
			{"name": "Móveis & Cia", "tax_id": "73.803.229/0001-46", "email": "contato@moveisecia.com"},
		},
	}

	total := 0
	for _, name := range model.CollectionNames {
		for _, fields := range seed[name] {
			if _, err := st.CreateRecord(ctx, name, fields, "seed"); err != nil {
				log.Fatalf("Failed to seed %s: %v", name, err)
			}
			total++
		}
	}
	log.Printf("Seeded %d records into %s", total, cfg.Database.Path)
}
