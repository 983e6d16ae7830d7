package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	category    int // index into seedCategories
	name        string
	description string
	price       string
	stock       int
	imageURL    string
}

var seedCategories = []string{
	"Plushies & Toys",
	"Apparel & Accessories",
	"Bags & Pouches",
	"Crochet Supplies",
	"Home & Decor",
}

const (
	plushDesc   = " plushie, perfect for children and collectors. Made with soft acrylic yarn and safety eyes."
	classicDesc = " made with premium cotton yarn. Features embroidered face and soft stuffing."
)

var seedProducts = []seedProduct{
	{0, "Crochet Teddy Bear", "Classic teddy bear" + classicDesc, "32.50", 8, "/public/images/crochet-teddy-bear.svg"},
	{0, "Crochet Bunny", "Classic bunny" + classicDesc, "32.50", 8, "/public/images/bunny.svg"},
	{0, "Crochet Chicken", "Classic chicken" + classicDesc, "32.50", 8, "/public/images/chicken.svg"},
	{1, "Crochet Mini Frog", "Classic mini frog" + classicDesc, "32.50", 8, "/public/images/mini-frog.svg"},
	{0, "Mini Dinosaur", "Handmade crochet dinosaur" + plushDesc, "10.99", 5, "/public/images/dino.svg"},
	{0, "Fluffy", "Handmade crochet fluffy" + plushDesc, "9.00", 5, "/public/images/fluffy.svg"},
	{0, "Pixie", "Handmade crochet pixie" + plushDesc, "15.00", 10, "/public/images/pixie.svg"},
	{0, "Bear Sea", "Handmade crochet Bear Sea" + plushDesc, "20.00", 8, "/public/images/bear.svg"},
	{0, "Dinosaur Crochet", "Handmade crochet dinosaur" + plushDesc, "25.00", 20, "/public/images/mini-dino.svg"},
	{0, "Gary Snail", "Handmade crochet Gary Snail" + plushDesc, "35.00", 10, "/public/images/gary.svg"},
	{0, "Stitch Crochet", "Handmade crochet Stitch" + plushDesc, "30.00", 70, "/public/images/stitch.svg"},
	{1, "Lily Keychain", "Handmade crochet lily keychain, perfect for gifts and collectors.", "5.00", 70, "/public/images/lily.svg"},
	{1, "Cute Fish Keychain", "Handmade crochet fish keychain, perfect for gifts and collectors.", "4.00", 30, "/public/images/fish.svg"},
	{1, "Earring", "Handmade crochet earrings, light and colourful.", "2.00", 30, "/public/images/earring.svg"},
	{1, "Lip Crochet", "Handmade crochet lip keychain, perfect for gifts and collectors.", "5.00", 20, "/public/images/lip.svg"},
	{1, "Totoro Keychain", "Handmade crochet Totoro keychain, perfect for gifts and collectors.", "5.00", 20, "/public/images/toroto.svg"},
	{2, "Lumb Bag", "Handmade crochet lumb bag with a soft lining.", "10.00", 20, "/public/images/lumb.svg"},
	{2, "Mini Bag", "Handmade crochet mini bag for coins and keys.", "4.00", 10, "/public/images/bag.svg"},
	{2, "HairBand", "Handmade crochet hairband in pastel yarn.", "5.00", 20, "/public/images/hairband.svg"},
	{2, "AirPods Crochet", "Handmade crochet AirPods case.", "6.00", 10, "/public/images/airpod.svg"},
	{2, "Fish Bag", "Handmade fish shaped shoulder bag.", "10.00", 20, "/public/images/fish-bag.svg"},
	{3, "Cute Hook", "Crochet hook with an ergonomic handle.", "2.00", 70, "/public/images/hook.svg"},
	{3, "Stitch Marker", "Set of locking stitch markers.", "1.00", 70, "/public/images/marker.svg"},
	{3, "Pink Yarn", "Soft pink acrylic yarn.", "1.00", 100, "/public/images/pink-yarn.svg"},
	{3, "White Yarn", "Soft white acrylic yarn.", "1.00", 100, "/public/images/white-yarn.svg"},
	{3, "Set of Yarn", "Assorted set of acrylic yarn.", "1.00", 100, "/public/images/set-yarn.svg"},
	{3, "SkyBlue Yarn", "Soft sky blue acrylic yarn.", "1.00", 100, "/public/images/skyblue.svg"},
	{4, "Wall Hanging", "Handmade crochet wall hanging.", "10.00", 100, "/public/images/wall.svg"},
	{4, "Blanket Crochet", "Handmade crochet blanket.", "15.00", 50, "/public/images/blanket.svg"},
	{4, "Bunting Garland", "Handmade crochet bunting garland.", "5.00", 50, "/public/images/bunting.svg"},
	{4, "Plant Hanging", "Handmade crochet plant hanger.", "15.00", 20, "/public/images/plant.svg"},
	{4, "Bear Mug Heat Mat", "Handmade bear shaped mug heat mat.", "5.00", 90, "/public/images/bear-mug.svg"},
}

// Seed inserts the demo catalog. It does nothing when products already exist.
func (db *DB) Seed(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		categoryIDs := make([]int64, len(seedCategories))
		for i, name := range seedCategories {
			id, err := db.ensureCategory(ctx, tx, name)
			if err != nil {
				return err
			}
			categoryIDs[i] = id
		}

		// Spread creation times so newest-first listings are deterministic.
		base := time.Now().UTC().Add(-time.Duration(len(seedProducts)) * time.Minute)
		query := `INSERT INTO products (name, description, price, stock, image_url, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		for i, p := range seedProducts {
			price, err := decimal.NewFromString(p.price)
			if err != nil {
				return fmt.Errorf("invalid seed price for %s: %w", p.name, err)
			}
			createdAt := base.Add(time.Duration(i) * time.Minute)
			if _, err := tx.ExecContext(ctx, query, p.name, p.description, price, p.stock, p.imageURL, categoryIDs[p.category], createdAt); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (db *DB) ensureCategory(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up category %s: %w", name, err)
	}

	result, err := tx.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to seed category %s: %w", name, err)
	}
	return result.LastInsertId()
}
