package api

import (
	"context"

	authUsecase "trialfinder-backend/internal/auth/usecase"
	billingDelivery "trialfinder-backend/internal/billing/delivery"
	billingUsecase "trialfinder-backend/internal/billing/usecase"
	chatDelivery "trialfinder-backend/internal/chat/delivery"
	chatUsecase "trialfinder-backend/internal/chat/usecase"
	contactDelivery "trialfinder-backend/internal/contact/delivery"
	contactUsecase "trialfinder-backend/internal/contact/usecase"
	deviceDelivery "trialfinder-backend/internal/device/delivery"
	deviceRepo "trialfinder-backend/internal/device/repository"
	deviceUsecase "trialfinder-backend/internal/device/usecase"
	eligibilityDelivery "trialfinder-backend/internal/eligibility/delivery"
	eligibilityUsecase "trialfinder-backend/internal/eligibility/usecase"
	"trialfinder-backend/internal/notification"
	patientDelivery "trialfinder-backend/internal/patient/delivery"
	patientRepo "trialfinder-backend/internal/patient/repository"
	patientUsecase "trialfinder-backend/internal/patient/usecase"
	pharmacyDelivery "trialfinder-backend/internal/pharmacy/delivery"
	pharmacyRepo "trialfinder-backend/internal/pharmacy/repository"
	pharmacyUsecase "trialfinder-backend/internal/pharmacy/usecase"
	trialDelivery "trialfinder-backend/internal/trial/delivery"
	trialRepo "trialfinder-backend/internal/trial/repository"
	trialUsecase "trialfinder-backend/internal/trial/usecase"
	"trialfinder-backend/pkg/ai"
	"trialfinder-backend/pkg/cache"
	"trialfinder-backend/pkg/clinicaltrials"
	"trialfinder-backend/pkg/config"
	"trialfinder-backend/pkg/fcm"
	"trialfinder-backend/pkg/logger"
	"trialfinder-backend/pkg/mailer"
	"trialfinder-backend/pkg/middleware"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the infrastructure clients built in main. Firestore, DB
// and Messaging are optional; the features needing them are disabled when
// they are nil.
type Dependencies struct {
	Config    *config.Config
	Log       *logrus.Logger
	Cache     cache.Store
	Firestore *firestore.Client
	DB        *gorm.DB
	Messaging fcm.Sender
}

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	config      *config.Config
	log         *logrus.Logger

	trialHandler       *trialDelivery.TrialHandler
	eligibilityHandler *eligibilityDelivery.EligibilityHandler
	chatHandler        *chatDelivery.ChatHandler
	contactHandler     *contactDelivery.ContactHandler
	checkoutHandler    *billingDelivery.CheckoutHandler
	settingsHandler    *SettingsHandler

	// nil without Firestore
	patientHandler  *patientDelivery.PatientHandler
	pharmacyHandler *pharmacyDelivery.PharmacyHandler
	// nil without Postgres
	deviceHandler *deviceDelivery.DeviceHandler
	janitor       *deviceUsecase.TokenJanitor

	notifications *notification.Service
}

func NewHandler(ctx context.Context, deps Dependencies) *Handler {
	cfg := deps.Config
	log := deps.Log

	// LLM providers shared by the completion and chat routers
	completion, chat := ai.NewRouters(ctx, ai.Config{
		Provider:        ai.ProviderType(cfg.AIProvider),
		ChatProvider:    ai.ProviderType(cfg.ChatProvider),
		Timeout:         cfg.LLMTimeout,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		GeminiAPIKey:    cfg.GeminiApiKey,
		GeminiModel:     cfg.GeminiModel,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaModel:     cfg.OllamaModel,
	}, log)
	log.WithFields(logrus.Fields{
		"completion": completion.Active(),
		"chat":       chat.Active(),
	}).Info("AI routers initialized")

	// Trial search and detail
	registry := clinicaltrials.NewClient(clinicaltrials.Config{
		BaseURL:   cfg.CTGovBaseURL,
		Timeout:   cfg.CTGovTimeout,
		RateLimit: cfg.CTGovRateLimit,
	}, log)
	var simplifications trialRepo.SimplificationRepository
	if deps.DB != nil {
		simplifications = trialRepo.NewSimplificationRepository(deps.DB)
	}
	simplifier := trialUsecase.NewSimplifier(completion, deps.Cache, simplifications, log)
	trialUc := trialUsecase.NewTrialUsecase(registry, simplifier, deps.Cache, trialUsecase.Options{
		SimplifyConcurrency: cfg.SimplifyConcurrency,
		DetailTTL:           cfg.CacheTTL,
	}, log)

	h := &Handler{
		authUsecase:        authUsecase.NewAuthUsecase(cfg),
		config:             cfg,
		log:                log,
		trialHandler:       trialDelivery.NewTrialHandler(trialUc, log),
		eligibilityHandler: eligibilityDelivery.NewEligibilityHandler(eligibilityUsecase.NewEligibilityUsecase(completion, log)),
		chatHandler:        chatDelivery.NewChatHandler(chatUsecase.NewChatUsecase(chat, log)),
		settingsHandler:    NewSettingsHandler(completion, chat),
	}

	// Contact form
	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	} else {
		log.Warn("SMTP_HOST not set. Contact form will return 503.")
	}
	h.contactHandler = contactDelivery.NewContactHandler(contactUsecase.NewContactUsecase(sender, cfg.ContactFrom, cfg.ContactTo, log))

	h.checkoutHandler = billingDelivery.NewCheckoutHandler(billingUsecase.NewCheckoutUsecase(billingUsecase.Config{
		SecretKey:  cfg.StripeSecretKey,
		PriceID:    cfg.StripePriceID,
		SuccessURL: cfg.StripeSuccessURL,
		CancelURL:  cfg.StripeCancelURL,
	}, log))

	// Device tokens live in Postgres
	var devices notification.DeviceStore
	if deps.DB != nil {
		tokens := deviceRepo.NewDeviceTokenRepository(deps.DB)
		deviceUc := deviceUsecase.NewDeviceUsecase(tokens, log)
		h.deviceHandler = deviceDelivery.NewDeviceHandler(deviceUc, log)
		h.janitor = deviceUsecase.NewTokenJanitor(tokens, cfg.DeviceSweepInterval, cfg.DeviceTokenMaxAge, log)
		devices = deviceUc
	} else {
		log.Warn("DATABASE_URL not set. Device registration and push notifications are disabled.")
	}

	var pusher notification.Pusher
	if deps.Messaging != nil {
		pusher = fcm.NewClient(deps.Messaging, log)
	}

	if deps.Firestore == nil {
		log.Warn("Firestore not configured. Patient and pharmacy routes are disabled.")
		return h
	}

	patients := patientRepo.NewFirestoreRepository(deps.Firestore)
	pharmacyUc := pharmacyUsecase.NewPharmacyUsecase(pharmacyRepo.NewFirestoreRepository(deps.Firestore), patients, log)
	h.pharmacyHandler = pharmacyDelivery.NewPharmacyHandler(pharmacyUc, log)

	var publisher patientUsecase.Publisher
	notifications, err := notification.NewService(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, cfg.FirebaseCredentials, pharmacyUc, devices, pusher, log)
	if err != nil {
		log.WithError(err).Warn("Notification service unavailable. Saved studies will not notify pharmacies.")
	} else {
		h.notifications = notifications
		publisher = notifications
	}
	h.patientHandler = patientDelivery.NewPatientHandler(patientUsecase.NewPatientUsecase(patients, publisher, log), log)

	return h
}

// StartBackground runs the device token janitor and the notification
// consumer until ctx is cancelled.
func (h *Handler) StartBackground(ctx context.Context) {
	if h.janitor != nil {
		go h.janitor.Run(ctx)
	}
	if h.notifications != nil {
		h.notifications.Start(ctx)
	}
}

// Engine builds the gin engine with the shared middleware chain and all routes.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CorrelationID(),
		logger.RequestLogger(h.log),
		middleware.CORS(),
		middleware.RequestTimeout(h.config.RequestTimeout),
	)

	SetupRoutes(r, h)
	return r
}

// Close drains in-flight notifications.
func (h *Handler) Close() error {
	if h.notifications == nil {
		return nil
	}
	return h.notifications.Close()
}
