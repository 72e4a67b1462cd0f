package seed

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmacy-order-api/internal/model"
)

// Run inserts the demo catalog and the delivery windows for today and
// tomorrow. Existing rows are left untouched, so it is safe on every boot.
func Run(db *gorm.DB) error {
	categories := []model.Category{
		{ID: "cat-analgesics", Name: "Analgesics", IsActive: true},
		{ID: "cat-vitamins", Name: "Vitamins & Supplements", IsActive: true},
		{ID: "cat-personal-care", Name: "Personal Care", IsActive: true},
		{ID: "cat-baby", Name: "Baby", IsActive: true},
		{ID: "cat-dermo", Name: "Dermocosmetics", IsActive: true},
		{ID: "cat-cold-chain", Name: "Cold Chain", IsActive: true},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return err
	}

	analgesics := "cat-analgesics"
	vitamins := "cat-vitamins"
	personal := "cat-personal-care"
	baby := "cat-baby"
	dermo := "cat-dermo"
	coldChain := "cat-cold-chain"

	products := []model.Product{
		{ID: "prod-paracetamol-500", SKU: "FAR-AN-0001", Name: "Paracetamol 500mg (10 tabs)", Brand: "Generic", PriceCents: 250, IsActive: true, IsDeliverable: true, CategoryID: &analgesics},
		{ID: "prod-ibuprofen-400", SKU: "FAR-AN-0002", Name: "Ibuprofen 400mg (10 tabs)", Brand: "Generic", PriceCents: 380, IsActive: true, IsDeliverable: true, CategoryID: &analgesics},
		{ID: "prod-vitamin-c-1g", SKU: "FAR-VI-0001", Name: "Vitamin C 1g (10 effervescent)", Brand: "Generic", PriceCents: 690, IsActive: true, IsDeliverable: true, CategoryID: &vitamins},
		{ID: "prod-multivitamin", SKU: "FAR-VI-0002", Name: "Adult Multivitamin (30 tabs)", Brand: "Generic", PriceCents: 1490, IsActive: true, IsDeliverable: true, CategoryID: &vitamins},
		{ID: "prod-shampoo-ad", SKU: "FAR-CP-0001", Name: "Anti-dandruff Shampoo 400ml", Brand: "Generic", PriceCents: 850, IsActive: true, IsDeliverable: true, CategoryID: &personal},
		{ID: "prod-toothpaste", SKU: "FAR-CP-0002", Name: "Toothpaste 90g", Brand: "Generic", PriceCents: 320, IsActive: true, IsDeliverable: true, CategoryID: &personal},
		{ID: "prod-diapers-m", SKU: "FAR-BE-0001", Name: "Diapers size M (20)", Brand: "Generic", PriceCents: 1890, IsActive: true, IsDeliverable: true, CategoryID: &baby},
		{ID: "prod-wet-wipes", SKU: "FAR-BE-0002", Name: "Wet Wipes (80)", Brand: "Generic", PriceCents: 540, IsActive: true, IsDeliverable: true, CategoryID: &baby},
		{ID: "prod-sunscreen-50", SKU: "FAR-DE-0001", Name: "Sunscreen SPF 50 (50ml)", Brand: "Generic", PriceCents: 2290, IsActive: true, IsDeliverable: true, CategoryID: &dermo},
		{ID: "prod-moisturizer", SKU: "FAR-DE-0002", Name: "Moisturizing Cream (200ml)", Brand: "Generic", PriceCents: 990, IsActive: true, IsDeliverable: true, CategoryID: &dermo},
		// Cold-chain items require in-store pickup.
		{ID: "prod-insulin-pen", SKU: "FAR-CC-0001", Name: "Insulin Pen 100IU/ml", Brand: "Generic", PriceCents: 4590, IsActive: true, IsDeliverable: false, CategoryID: &coldChain},
		{ID: "prod-flu-vaccine", SKU: "FAR-CC-0002", Name: "Flu Vaccine Dose", Brand: "Generic", PriceCents: 3200, IsActive: true, IsDeliverable: false, CategoryID: &coldChain},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return err
	}

	return seedWindows(db)
}

func seedWindows(db *gorm.DB) error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.Add(24 * time.Hour)

	var windows []model.DeliveryWindow
	for _, date := range []time.Time{today, tomorrow} {
		for _, slot := range [][2]string{{"09:00", "11:00"}, {"11:00", "13:00"}} {
			windows = append(windows, model.DeliveryWindow{
				ID:        uuid.NewString(),
				Date:      date,
				StartTime: slot[0],
				EndTime:   slot[1],
				Capacity:  10,
			})
		}
	}

	// Windows are keyed by date+slot, not id, so a fresh uuid must not
	// duplicate an already-seeded slot.
	for _, w := range windows {
		var count int64
		err := db.Model(&model.DeliveryWindow{}).
			Where("date = ? AND start_time = ?", w.Date, w.StartTime).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&w).Error; err != nil {
			return err
		}
	}

	return nil
}
