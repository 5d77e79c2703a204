package events

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"eventra/structs"

	"github.com/disintegration/imaging"
)

const eventpicUploadPath = "./static/eventpic"

func validateEventFields(event *structs.Event) string {
	switch {
	case event.Title == "":
		return "Title is required"
	case event.Location == "":
		return "Location is required"
	case event.StartDate.IsZero() || event.EndDate.IsZero():
		return "Start and end dates are required"
	case event.EndDate.Before(event.StartDate):
		return "End date must be after start date"
	case len(event.Tickets) == 0:
		return "At least one ticket category is required"
	}
	return validateCategories(event.Tickets)
}

func validateCategories(categories []structs.TicketCategory) string {
	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat.CategoryName == "" {
			return "Category name is required"
		}
		if seen[cat.CategoryName] {
			return fmt.Sprintf("Duplicate category %q", cat.CategoryName)
		}
		seen[cat.CategoryName] = true
		if cat.TotalTickets < 1 {
			return fmt.Sprintf("Category %q must have at least one ticket", cat.CategoryName)
		}
		if cat.Price < 0 {
			return fmt.Sprintf("Category %q has an invalid price", cat.CategoryName)
		}
	}
	return ""
}

// saveBannerImage stores the uploaded poster and a resized thumbnail,
// returning the stored file name.
func saveBannerImage(eventID string, file multipart.File) (string, error) {
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("invalid image file: %v", err)
	}

	if err := os.MkdirAll(eventpicUploadPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating directory for banner: %v", err)
	}

	fileName := eventID + ".jpg"
	originalPath := filepath.Join(eventpicUploadPath, fileName)
	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("error saving banner: %v", err)
	}

	thumbImg := imaging.Resize(img, 480, 0, imaging.Lanczos)
	thumbnailPath := filepath.Join(eventpicUploadPath, eventID+"_thumb.jpg")
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", fmt.Errorf("error saving banner thumbnail: %v", err)
	}

	return fileName, nil
}
