package main

import (
	"context"

	"institute/config"
	assignmentController "institute/controllers/assignmentControllers"
	certificateController "institute/controllers/certificateControllers"
	"institute/database"
	"institute/logger"
	"institute/routers/assignmentRoutes"
	"institute/routers/certificateRoutes"
	"institute/services/credential"
	"institute/services/deeplink"
	"institute/services/dispatcher"
	"institute/services/identifier"
	"institute/services/notification"
	"institute/services/scheduler"
	"institute/services/storage"
	"institute/services/submission"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	store := database.NewStore(database.ConnectDb(cfg))

	sender, err := notification.NewSender(cfg.EmailBackend, notification.SenderConfig{
		SendgridAPIKey: cfg.SendgridAPIKey,
		From:           cfg.EmailSender,
		FromName:       cfg.EmailSenderName,
		Password:       cfg.Password,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
	}, log)
	if err != nil {
		log.Fatal("email sender", zap.Error(err))
	}

	objects, err := storage.New(context.Background(), storage.Config{
		Backend:         cfg.StorageBackend,
		Origin:          cfg.PublicOrigin,
		UploadDir:       cfg.UploadDir,
		PublicPath:      cfg.PublicUploadPath,
		S3Endpoint:      cfg.S3Endpoint,
		S3Region:        cfg.S3Region,
		S3Bucket:        cfg.S3Bucket,
		S3AccessKeyID:   cfg.S3AccessKeyID,
		S3SecretKey:     cfg.S3SecretKey,
		S3PublicBaseURL: cfg.S3PublicBaseURL,
		HTTPURL:         cfg.StorageHTTPURL,
		HTTPToken:       cfg.StorageHTTPToken,
	})
	if err != nil {
		log.Fatal("object store", zap.Error(err))
	}

	ids, err := identifier.NewGenerator(store, cfg.CertProgramPrefix)
	if err != nil {
		log.Fatal("certificate ids", zap.Error(err))
	}

	links := deeplink.NewBuilder(cfg.PublicOrigin, cfg.LinkSigningKey, cfg.EnforceLinkSignature)
	dispatch := dispatcher.New(store, sender, links, dispatcher.Options{
		Workers:     cfg.DispatchWorkers,
		SendTimeout: cfg.SendTimeout,
		Institute:   cfg.EmailSenderName,
	}, log)
	submissions := submission.New(store, objects, sender, links, submission.Options{
		SendTimeout: cfg.SendTimeout,
		Institute:   cfg.EmailSenderName,
	}, log)
	certificates := credential.New(store, ids, objects, sender, credential.Options{
		SendTimeout: cfg.SendTimeout,
		Institute:   cfg.EmailSenderName,
	}, log)

	maxUpload := int64(cfg.MaxUploadMB) << 20
	app := fiber.New(fiber.Config{BodyLimit: int(maxUpload) + 1<<20})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Uploaded submissions and certificates when stored on local disk
	if cfg.StorageBackend == "local" {
		app.Static(cfg.PublicUploadPath, cfg.UploadDir)
	}

	assignmentRoutes.SetupAssignmentRoutes(app, &assignmentController.Handler{
		Dispatcher:     dispatch,
		Submissions:    submissions,
		MaxUploadBytes: maxUpload,
	})
	certificateRoutes.SetupCertificateRoutes(app, &certificateController.Handler{
		Certificates:   certificates,
		MaxUploadBytes: maxUpload,
	})

	if cfg.ReminderCron != "" {
		reminders := scheduler.NewReminder(store, dispatch, log)
		c, err := scheduler.Start(cfg.ReminderCron, reminders, log)
		if err != nil {
			log.Fatal("reminder scheduler", zap.Error(err))
		}
		defer c.Stop()
	}

	log.Info("server is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
