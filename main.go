package main

import (
	"log"
	"os"

	"gikai/admin"
	"gikai/common"
	"gikai/contact"
	"gikai/database"
	"gikai/demographics"
	"gikai/email"
	"gikai/faq"
	"gikai/likes"
	"gikai/members"
	"gikai/migration"
	"gikai/news"
	"gikai/questions"
	"gikai/slideshow"
	"gikai/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("could not open database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal(err)
	}
	if os.Getenv("SEED_SAMPLE_DATA") == "true" {
		if err := database.SeedSampleData(db); err != nil {
			log.Printf("Error seeding sample data: %v", err)
		}
	}

	router := gin.Default()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET not set")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("gikai-session", store))

	gate := admin.NewGate(db)
	mailer := email.NewService()
	blobStore := storage.NewStorageModule(db, gate)

	adminModule := admin.NewAdminModule(db, gate, mailer)
	adminModule.RegisterRoutes(router)

	membersModule := members.NewMembersModule(db, gate)
	membersModule.RegisterRoutes(router)

	questionsModule := questions.NewQuestionsModule(db, gate)
	questionsModule.RegisterRoutes(router)

	likesModule := likes.NewLikesModule(db, gate)
	likesModule.RegisterRoutes(router)

	newsModule := news.NewNewsModule(db, gate, blobStore)
	newsModule.RegisterRoutes(router)

	slideshowModule := slideshow.NewSlideshowModule(db, gate, blobStore)
	slideshowModule.RegisterRoutes(router)

	faqModule := faq.NewFAQModule(db, gate)
	faqModule.RegisterRoutes(router)

	contactModule := contact.NewContactModule(db, gate)
	contactModule.RegisterRoutes(router)

	demographicsModule := demographics.NewDemographicsModule(db, gate)
	demographicsModule.RegisterRoutes(router)

	blobStore.RegisterRoutes(router)
	router.Static("/uploads", blobStore.UploadDir())

	migrationModule := migration.NewMigrationModule(db, gate)
	migrationModule.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
