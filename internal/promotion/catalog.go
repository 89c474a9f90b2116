package promotion

import (
	"time"

	"storefront/internal/domain/model"
)

// DefaultCatalog は固定のプロモーション一覧
func DefaultCatalog() []model.Promotion {
	return []model.Promotion{
		{
			ID:    "welcome-seeds",
			Title: "Welcome to the farm store",
			Body:  "Get 10% off your first seed order.",
			Delay: 30 * time.Second,
		},
		{
			ID:    "fertilizer-week",
			Title: "Fertilizer week",
			Body:  "Organic fertilizers are 15% off this week.",
			Delay: 2 * time.Minute,
		},
		{
			ID:    "refer-a-farmer",
			Title: "Refer a farmer",
			Body:  "Share your referral code and both of you get a discount.",
			Delay: 5 * time.Minute,
		},
	}
}
