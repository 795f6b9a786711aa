package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"girlfanz/pkg/config"
	"girlfanz/pkg/database"
	"girlfanz/pkg/logger"
	"girlfanz/pkg/models"
	"girlfanz/pkg/queue"
	"girlfanz/pkg/s3"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedPassword = "password123"

type seedUser struct {
	email       string
	username    string
	role        models.UserRole
	ageVerified bool
}

var seedUsers = []seedUser{
	{"admin@girlfanz.test", "admin", models.RoleAdmin, true},
	{"luna@girlfanz.test", "luna_creates", models.RoleCreator, true},
	{"mika@girlfanz.test", "mika_studio", models.RoleCreator, true},
	{"fan@girlfanz.test", "verified_fan", models.RoleFan, true},
	{"newbie@girlfanz.test", "unverified_fan", models.RoleFan, false},
}

func main() {
	publish := flag.Bool("publish", false, "publish post.published events so running feed services drop cached pages")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.NewWithLevel(cfg.LogLevel).With("tool", "seed")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	postIDs, err := seedDatabase(db, time.Now().UTC(), log)
	if err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	// Seeded media keys point at this bucket; signed URLs 404 until it exists.
	if s3Client, err := s3.NewClient(cfg); err != nil {
		log.Warn("Failed to create S3 client: %v", err)
	} else if err := s3Client.EnsureBucket(); err != nil {
		log.Warn("Failed to ensure media bucket %s: %v", cfg.S3BucketName, err)
	}

	if *publish && len(postIDs) > 0 {
		if err := publishPosts(cfg, postIDs, log); err != nil {
			log.Error("Failed to publish events: %v", err)
			panic(err)
		}
	}

	log.Info("Database seeded successfully! %d new posts", len(postIDs))
}

// seedDatabase is idempotent: existing users are reused and creators that
// already have posts get no new ones. It returns the ids of created posts.
func seedDatabase(db *gorm.DB, now time.Time, log *logger.Logger) ([]string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make(map[string]*models.User, len(seedUsers))
	for _, su := range seedUsers {
		user, err := ensureUser(db, su, string(hash), now)
		if err != nil {
			return nil, err
		}
		users[su.username] = user
		log.Info("User ready: %s (%s)", user.Username, user.Role)
	}

	var created []*models.Post
	for i, creator := range []*models.User{users["luna_creates"], users["mika_studio"]} {
		var count int64
		if err := db.Model(&models.Post{}).Where("creator_id = ?", creator.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			log.Info("Creator %s already has %d posts, skipping", creator.Username, count)
			continue
		}

		// Creators are interleaved in time so the global feed mixes them.
		posts := creatorPosts(creator.ID, creator.Username, now.Add(-time.Duration(i)*time.Minute))
		if err := db.Create(&posts).Error; err != nil {
			return nil, fmt.Errorf("failed to create posts for %s: %w", creator.Username, err)
		}
		for j := range posts {
			created = append(created, &posts[j])
		}
		log.Info("Created %d posts for %s", len(posts), creator.Username)
	}

	fan := users["verified_fan"]
	subscription := &models.Subscription{ViewerID: fan.ID, CreatorID: users["luna_creates"].ID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(subscription).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	// The fan unlocks the first paid post of the creator they do not follow.
	for _, post := range created {
		if post.CreatorID == users["mika_studio"].ID && post.Visibility == models.VisibilityPaid && !post.IsFreePreview {
			purchase := &models.Purchase{ViewerID: fan.ID, PostID: post.ID, PriceInCents: *post.PriceInCents}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(purchase).Error; err != nil {
				return nil, fmt.Errorf("failed to create purchase: %w", err)
			}
			break
		}
	}

	ids := make([]string, len(created))
	for i, post := range created {
		ids[i] = post.ID
	}
	return ids, nil
}

func ensureUser(db *gorm.DB, su seedUser, passwordHash string, now time.Time) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", su.email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:       su.email,
		Username:    su.username,
		Password:    passwordHash,
		Role:        su.role,
		AgeVerified: su.ageVerified,
		IsActive:    true,
	}
	if su.ageVerified {
		verifiedAt := now
		user.AgeVerifiedAt = &verifiedAt
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", su.username, err)
	}
	return user, nil
}

// creatorPosts builds one post of every visibility tier, newest first. Two of
// them share a timestamp so pagination tie-breaking is visible in dev data.
func creatorPosts(creatorID, username string, newest time.Time) []models.Post {
	text := func(s string) *string { return &s }
	price := func(c int) *int { return &c }
	at := func(hoursAgo int) time.Time { return newest.Add(-time.Duration(hoursAgo) * time.Hour) }

	posts := []models.Post{
		{Type: models.PostTypeText, Content: text(fmt.Sprintf("Welcome to %s's page!", username)), Visibility: models.VisibilityPublic, ContentRating: models.RatingGeneral, IsPinned: true, CreatedAt: at(48)},
		{Type: models.PostTypePhoto, Content: text("Behind the scenes"), Visibility: models.VisibilitySubscriber, ContentRating: models.RatingMature, CreatedAt: at(24)},
		{Type: models.PostTypePhoto, Content: text("Full set, unlock to view"), Visibility: models.VisibilityPaid, PriceInCents: price(500), ContentRating: models.RatingExplicit, CreatedAt: at(12)},
		{Type: models.PostTypeVideo, Content: text("Free taste of the new series"), Visibility: models.VisibilityPaid, PriceInCents: price(900), IsFreePreview: true, ContentRating: models.RatingMature, IsSponsored: true, CreatedAt: at(6)},
		{Type: models.PostTypeText, Content: text("Subscribers only Q&A"), Visibility: models.VisibilitySubscriber, ContentRating: models.RatingGeneral, CreatedAt: at(2)},
		{Type: models.PostTypeLive, Content: text("Going live tonight"), Visibility: models.VisibilityPublic, ContentRating: models.RatingGeneral, CreatedAt: at(2)},
		{Type: models.PostTypeVideo, Visibility: models.VisibilityPaid, PriceInCents: price(1500), ContentRating: models.RatingExplicit, CreatedAt: at(0)},
	}

	for i := range posts {
		posts[i].CreatorID = creatorID
		if posts[i].Type == models.PostTypePhoto || posts[i].Type == models.PostTypeVideo {
			ext := "jpg"
			contentType := "image/jpeg"
			if posts[i].Type == models.PostTypeVideo {
				ext, contentType = "mp4", "video/mp4"
			}
			for m := 0; m < 2; m++ {
				posts[i].Media = append(posts[i].Media, models.PostMedia{
					StorageKey:  fmt.Sprintf("posts/%s/seed_%d_%d.%s", creatorID, i, m, ext),
					ContentType: contentType,
					Position:    m,
				})
			}
		}
	}

	// newest first
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	return posts
}

func publishPosts(cfg *config.Config, postIDs []string, log *logger.Logger) error {
	client, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range postIDs {
		event := queue.Event{Type: queue.EventPostPublished, PostID: id, OccurredAt: time.Now().UTC()}
		if err := client.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish %s: %w", id, err)
		}
	}
	log.Info("Published %d post.published events", len(postIDs))
	return nil
}
