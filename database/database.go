package database

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/anjiri1684/tutor_connect/store"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	log.Info().Msg("✅ Database connected successfully")
	return db, nil
}

// Migrate creates the collections table and one empty row per collection.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.CollectionRecord{}); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	if err := store.NewGormBackend(db).EnsureCollections(ctx); err != nil {
		return errors.Wrap(err, "seed collection rows")
	}
	log.Info().Msg("✅ Database migration successful")
	return nil
}

func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	log.Info().Str("addr", opts.Addr).Msg("✅ Redis connected successfully")
	return client, nil
}

var demoUsers = []services.RegisterInput{
	{
		IDCard: "V-25111222", FirstName: "María", LastName: "Pérez",
		Email: "maria.perez@unet.edu.ve", Password: "student123",
		Profile: models.StudentProfile{Career: "Ingeniería Informática", SubjectOfInterest: "Programación"},
	},
	{
		IDCard: "V-18333444", FirstName: "Carlos", LastName: "Rodríguez",
		Email: "carlos.rodriguez@unet.edu.ve", Password: "tutor123",
		Profile: models.TutorProfile{
			TutorType: models.TutorTypeUnet,
			Subjects: []models.Subject{
				{Name: "Programación I", PricePerHour: 15},
				{Name: "Estructuras de Datos", PricePerHour: 18},
			},
		},
	},
	{
		IDCard: "V-20555666", FirstName: "Ana", LastName: "Gómez",
		Email: "ana.gomez@gmail.com", Password: "tutor123",
		Profile: models.TutorProfile{
			TutorType: models.TutorTypePrivate,
			Subjects:  []models.Subject{{Name: "Matemáticas I", PricePerHour: 12}},
		},
	},
}

// SeedDirectory registers a few demo accounts when the directory is empty.
func SeedDirectory(ctx context.Context, records *services.Records, directory *services.DirectoryService) error {
	users, err := records.Users.All(ctx)
	if err != nil {
		return errors.Wrap(err, "check for existing users")
	}
	if len(users) > 0 {
		log.Info().Int("users", len(users)).Msg("Directory already populated, skipping demo seed")
		return nil
	}

	for _, d := range demoUsers {
		if _, err := directory.CreateUser(ctx, d); err != nil && !errors.Is(err, services.ErrEmailExists) {
			return errors.Wrapf(err, "seed %s", d.Email)
		}
	}
	log.Info().Int("users", len(demoUsers)).Msg("✅ Demo users seeded successfully")
	return nil
}
