package main

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

func demoProduct(name, category, price string, stock int64, image, description string) model.Product {
	return model.Product{
		Name:        name,
		Description: description,
		Category:    category,
		Image:       image,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
}

// デモ用カタログ
var demoCatalog = []model.Product{
	demoProduct("Wireless Noise-Cancelling Headphones", "Electronics", "299.99", 25,
		"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=300&fit=crop",
		"Over-ear headphones with active noise cancellation and 30-hour battery life."),
	demoProduct("Mechanical Gaming Keyboard", "Electronics", "149.99", 40,
		"https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=400&h=300&fit=crop",
		"RGB backlit mechanical keyboard with an aluminum frame."),
	demoProduct("Minimalist Leather Watch", "Clothing", "189.99", 15,
		"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=300&fit=crop",
		"Leather strap watch with quartz movement, water-resistant to 50m."),
	demoProduct("The Art of Computer Programming", "Books", "79.99", 60,
		"https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=400&h=300&fit=crop",
		"Multi-volume reference on fundamental algorithms."),
	demoProduct("Ergonomic Office Chair", "Home & Garden", "449.99", 10,
		"https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400&h=300&fit=crop",
		"Mesh chair with lumbar support and adjustable armrests."),
	demoProduct("Pro Running Shoes", "Sports", "129.99", 35,
		"https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400&h=300&fit=crop",
		"Lightweight running shoes with responsive foam cushioning."),
	demoProduct("4K Webcam", "Electronics", "99.99", 50,
		"https://images.unsplash.com/photo-1611532736597-de2d4265fba3?w=400&h=300&fit=crop",
		"Ultra HD webcam with auto-focus and dual microphones."),
	demoProduct("Clean Code by Robert Martin", "Books", "39.99", 80,
		"https://images.unsplash.com/photo-1589998059171-988d887df646?w=400&h=300&fit=crop",
		"A handbook of agile software craftsmanship."),
	demoProduct("Indoor Plant Set (3-Pack)", "Home & Garden", "59.99", 20,
		"https://images.unsplash.com/photo-1463320726281-696a485928c7?w=400&h=300&fit=crop",
		"Low-maintenance indoor plants in ceramic pots."),
	demoProduct("Yoga Mat Premium", "Sports", "49.99", 45,
		"https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=400&h=300&fit=crop",
		"6mm TPE yoga mat with alignment lines and carrying strap."),
	demoProduct("Wireless Charging Pad", "Electronics", "34.99", 65,
		"https://images.unsplash.com/photo-1587316205196-4c8caff51ca0?w=400&h=300&fit=crop",
		"15W Qi wireless charger with a matte finish."),
	demoProduct("Merino Wool Hoodie", "Clothing", "119.99", 30,
		"https://images.unsplash.com/photo-1556821840-3a63f15732ce?w=400&h=300&fit=crop",
		"Merino wool blend hoodie with kangaroo pocket."),
}
