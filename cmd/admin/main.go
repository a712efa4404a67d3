package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "suspend":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin suspend <user_id> [duration_in_hours]")
			os.Exit(1)
		}
		hours := 0
		if len(os.Args) > 3 {
			hours, err = strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
		}
		if err := suspendUser(storageSvc, os.Args[2], hours); err != nil {
			log.Fatalf("Error suspending user: %v", err)
		}
		fmt.Printf("User %s has been suspended.\n", os.Args[2])

	case "unsuspend":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unsuspend <user_id>")
			os.Exit(1)
		}
		if err := unsuspendUser(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error unsuspending user: %v", err)
		}
		fmt.Printf("User %s has been unsuspended.\n", os.Args[2])

	case "remove-listing":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin remove-listing <vehicle_id>")
			os.Exit(1)
		}
		if err := removeListing(db, os.Args[2]); err != nil {
			log.Fatalf("Error removing listing: %v", err)
		}
		fmt.Printf("Listing %s has been removed.\n", os.Args[2])

	case "reports":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin reports <user_id>")
			os.Exit(1)
		}
		if err := listReports(db, os.Args[2]); err != nil {
			log.Fatalf("Error listing reports: %v", err)
		}

	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <suspend|unsuspend|remove-listing|reports> [args]")
	os.Exit(1)
}

// suspendUser sets the suspension timestamp directly. Zero hours means an
// effectively permanent suspension.
func suspendUser(s *storage.Service, userID string, hours int) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	until := time.Now().Add(100 * 365 * 24 * time.Hour)
	if hours > 0 {
		until = time.Now().Add(time.Duration(hours) * time.Hour)
	}
	user.SuspendedUntil = &until
	return s.SaveUser(user)
}

func unsuspendUser(s *storage.Service, userID string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.SuspendedUntil = nil
	return s.SaveUser(user)
}

// removeListing pulls a listing regardless of who owns it.
func removeListing(db *gorm.DB, vehicleID string) error {
	res := db.Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("status", models.VehicleStatusRemoved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrVehicleNotFound
	}
	return nil
}

func listReports(db *gorm.DB, userID string) error {
	var reports []models.Report
	if err := db.Where("target_id = ?", userID).Order("created_at desc").Find(&reports).Error; err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Println("No reports against this user.")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%s  [%s] %s by %s (room %s): %s\n",
			r.CreatedAt.Format(time.RFC3339), r.Status, r.Reason, r.ReporterID, r.RoomID, r.Comment)
	}
	return nil
}
