package database

import (
	"log"
	"time"

	"vbtix/model"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeedData creates a demo organizer and event on an empty database so the
// scan and approval flows can be exercised right after boot.
func SeedData(db *gorm.DB) {
	var count int64
	db.Model(&model.Organizer{}).Count(&count)
	if count > 0 {
		return
	}

	organizer := model.Organizer{
		Name:  "VBTix Demo Organizer",
		Email: "organizer@vbtix.local",
	}
	if err := db.Create(&organizer).Error; err != nil {
		log.Printf("seed organizer: %v", err)
		return
	}

	start := time.Now().AddDate(0, 1, 0)
	event := model.Event{
		Name:        "VBTix Launch Festival",
		Slug:        slug.Make("VBTix Launch Festival"),
		Venue:       "Gelora Bung Karno",
		StartsAt:    start,
		EndsAt:      start.Add(8 * time.Hour),
		OrganizerId: organizer.ID,
	}
	if err := db.Create(&event).Error; err != nil {
		log.Printf("seed event: %v", err)
		return
	}

	types := []model.TicketType{
		{EventId: event.ID, Name: "Regular", Price: 150000, Currency: "IDR", Quantity: 500},
		{EventId: event.ID, Name: "VIP", Price: 450000, Currency: "IDR", Quantity: 100},
	}
	if err := db.Create(&types).Error; err != nil {
		log.Printf("seed ticket types: %v", err)
	}
}
