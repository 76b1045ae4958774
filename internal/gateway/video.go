package gateway

import (
	"context"
	"fmt"
	"strings"

	"concierge/internal/domain"
)

// Video simulates the video gateway: catalog search and rentals. A
// production deployment would query the content platform here.
type Video struct {
	catalog []catalogEntry
}

type catalogEntry struct {
	Key         string
	Title       string
	Kind        string
	Year        int
	Rating      string
	RentalPrice float64
	Description string
}

func NewVideo() *Video {
	return &Video{
		catalog: []catalogEntry{
			{Key: "matrix", Title: "The Matrix", Kind: "movie", Year: 1999, Rating: "R", RentalPrice: 3.99, Description: "A computer hacker learns the true nature of reality"},
			{Key: "nature", Title: "Planet Earth II", Kind: "documentary", Year: 2016, Rating: "TV-G", RentalPrice: 2.99, Description: "Stunning wildlife documentary series"},
			{Key: "comedy", Title: "The Office", Kind: "show", Year: 2005, Rating: "TV-14", RentalPrice: 1.99, Description: "Mockumentary about office workers"},
			{Key: "dog", Title: "Cute Dogs Compilation", Kind: "video", Year: 2023, Rating: "G", RentalPrice: 0.99, Description: "Adorable dogs doing funny things"},
		},
	}
}

func (v *Video) Name() string { return "video" }

func (v *Video) Operations() []domain.CapabilityDefinition {
	return []domain.CapabilityDefinition{
		{
			Name:        "search_content",
			Description: "Search the video catalog. Returns title, type, year, rating, description, and rental price of the best match.",
			Arguments: []domain.ArgumentField{
				{Name: "query", Type: "string", Required: true, Description: "Search terms, e.g. a title or genre"},
			},
			Effect: domain.EffectPure,
		},
		{
			Name:        "rent_movie",
			Description: "Rent a title from the catalog. Requires user approval of the charge before it runs.",
			Arguments: []domain.ArgumentField{
				{Name: "title", Type: "string", Required: true, Description: "Exact title to rent, as returned by search_content"},
			},
			Effect: domain.EffectApprovalRequired,
		},
	}
}

func (v *Video) Call(ctx context.Context, op string, args map[string]any) (string, error) {
	switch op {
	case "search_content":
		query, _ := args["query"].(string)
		if entry, ok := v.find(query); ok {
			return fmt.Sprintf("Found: %s (%d)\nType: %s\nRating: %s\nRental Price: $%.2f\nDescription: %s",
				entry.Title, entry.Year, entry.Kind, entry.Rating, entry.RentalPrice, entry.Description), nil
		}
		return fmt.Sprintf("No catalog results for %q. Try a different title or genre.", query), nil
	case "rent_movie":
		title, _ := args["title"].(string)
		if entry, ok := v.find(title); ok {
			return fmt.Sprintf("Rental confirmed: %s for $%.2f. It is available in your library for 48 hours.", entry.Title, entry.RentalPrice), nil
		}
		return "", fmt.Errorf("video gateway: title %q not in catalog", title)
	}
	return "", fmt.Errorf("video gateway: unknown operation %q", op)
}

func (v *Video) find(query string) (catalogEntry, bool) {
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return catalogEntry{}, false
	}
	for _, e := range v.catalog {
		title := strings.ToLower(e.Title)
		if strings.Contains(q, e.Key) || strings.Contains(q, title) || strings.Contains(title, q) {
			return e, true
		}
	}
	return catalogEntry{}, false
}
