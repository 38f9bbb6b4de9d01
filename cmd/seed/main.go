package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tran-hoang-nhan/phone-shop/internal/auth"
	"github.com/tran-hoang-nhan/phone-shop/internal/config"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/product"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/user"
	"github.com/tran-hoang-nhan/phone-shop/internal/storage"
)

// seedProduct mirrors the product fields a fixture file provides. Derived
// fields (rating, review count) start at zero.
type seedProduct struct {
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	Category           string   `yaml:"category"`
	Brand              string   `yaml:"brand"`
	SKU                string   `yaml:"sku"`
	Price              float64  `yaml:"price"`
	DiscountPercentage float64  `yaml:"discountPercentage"`
	Stock              int      `yaml:"stock"`
	Tags               []string `yaml:"tags"`
	Images             []string `yaml:"images"`
	Thumbnail          string   `yaml:"thumbnail"`
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime)

	fixtureFile := flag.String("file", "fixtures/products.yaml", "product fixture file")
	drop := flag.Bool("drop", false, "drop the products collection before importing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(
		context.Background(),
		(60 * time.Second),
	)
	defer cancel()

	db, dbClose, err := storage.NewMongoDB(
		config.Env.MongoURI,
		config.Env.MongoDBName,
	)
	if err != nil {
		log.Fatal(err)
	}
	defer dbClose(context.Background())

	productStore := product.NewStore(db)
	userStore := user.NewStore(db)

	if err := productStore.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	if *drop {
		if err := productStore.Drop(ctx); err != nil {
			log.Fatal(err)
		}
		if err := productStore.EnsureIndexes(ctx); err != nil {
			log.Fatal(err)
		}
		log.Println("dropped products collection")
	}

	seeded, err := importProducts(ctx, productStore, *fixtureFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("imported %d products from %s\n", seeded, *fixtureFile)

	if err := ensureAdmin(ctx, userStore); err != nil {
		log.Fatal(err)
	}
}

func importProducts(ctx context.Context, store *product.Store, fixtureFile string) (int, error) {
	raw, err := os.ReadFile(fixtureFile)
	if err != nil {
		return 0, err
	}

	var fixtures []seedProduct
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return 0, err
	}

	products := make([]*product.Product, 0, len(fixtures))
	for _, f := range fixtures {
		products = append(products, &product.Product{
			Title:              f.Title,
			Description:        f.Description,
			Category:           f.Category,
			Brand:              f.Brand,
			SKU:                f.SKU,
			Price:              f.Price,
			DiscountPercentage: f.DiscountPercentage,
			Stock:              f.Stock,
			Tags:               f.Tags,
			Images:             f.Images,
			Thumbnail:          f.Thumbnail,
		})
	}

	if err := store.Import(ctx, products); err != nil {
		return 0, err
	}

	return len(products), nil
}

func ensureAdmin(ctx context.Context, store *user.Store) error {
	if config.Env.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	userService := user.NewService(
		store,
		auth.NewTokenService(
			config.Env.AccessTokenSecret,
			config.Env.AccessTokenExpiryInSecs,
		),
	)

	admin, err := userService.EnsureAdmin(
		ctx,
		"admin",
		config.Env.AdminEmail,
		config.Env.AdminPassword,
	)
	if err != nil {
		return err
	}

	log.Printf("admin account ready: %s\n", admin.Email)
	return nil
}
