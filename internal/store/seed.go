package store

import (
	"time"

	"stockroom/internal/domain"
)

// seedTime is the creation timestamp stamped on the default catalogue. A
// fixed instant keeps seeded media byte-stable across runs.
var seedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultCategories is the category set written to an empty medium.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Outillage", Description: "Outils à main et électroportatifs", CreatedAt: seedTime},
		{ID: 2, Name: "Plomberie", Description: "Robinetterie, tuyaux et raccords", CreatedAt: seedTime},
		{ID: 3, Name: "Électricité", Description: "Câbles, prises et interrupteurs", CreatedAt: seedTime},
		{ID: 4, Name: "Peinture", Description: "Peintures, pinceaux et accessoires", CreatedAt: seedTime},
		{ID: 5, Name: "Quincaillerie", Description: "Vis, clous et fixations", CreatedAt: seedTime},
	}
}

// DefaultProducts is the product set written to an empty medium.
func DefaultProducts() []domain.Product {
	cat := func(id int64) *int64 { return &id }

	return []domain.Product{
		{
			ID: 1, Name: "Marteau 500g",
			Description:   "Marteau de menuisier manche bois",
			CategoryID:    cat(1),
			PurchasePrice: 6.50, SellingPrice: 12.90,
			RemainingStock: 15, MinStockLevel: 10,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 2, Name: "Tournevis cruciforme PH2",
			Description:   "Tournevis Phillips lame acier chrome-vanadium",
			CategoryID:    cat(1),
			PurchasePrice: 2.10, SellingPrice: 4.50,
			RemainingStock: 40, MinStockLevel: 15,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 3, Name: "Robinet mélangeur",
			Description:   "Mitigeur de cuisine chromé double commande",
			CategoryID:    cat(2),
			PurchasePrice: 18.00, SellingPrice: 34.90,
			RemainingStock: 8, MinStockLevel: 5,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 4, Name: "Tuyau PVC 32mm",
			Description:   "Tube évacuation PVC, barre de 2 mètres",
			CategoryID:    cat(2),
			PurchasePrice: 3.20, SellingPrice: 6.40,
			RemainingStock: 25, MinStockLevel: 10,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 5, Name: "Câble électrique 2.5mm²",
			Description:   "Couronne 25m, conducteur cuivre rigide",
			CategoryID:    cat(3),
			PurchasePrice: 14.00, SellingPrice: 24.90,
			RemainingStock: 12, MinStockLevel: 6,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 6, Name: "Pinceau plat 50mm",
			Description:   "Pinceau soies naturelles pour peinture glycéro",
			CategoryID:    cat(4),
			PurchasePrice: 1.80, SellingPrice: 3.90,
			RemainingStock: 60, MinStockLevel: 20,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
		{
			ID: 7, Name: "Vis à bois 4x40 (boîte de 200)",
			Description:   "Vis tête fraisée empreinte Pozidriv, acier zingué",
			CategoryID:    cat(5),
			PurchasePrice: 4.60, SellingPrice: 8.90,
			RemainingStock: 30, MinStockLevel: 10,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		},
	}
}
