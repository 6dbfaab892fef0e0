package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ready4exam-quiz-service/internal/app"
	"ready4exam-quiz-service/internal/auth"
	"ready4exam-quiz-service/internal/catalog"
	"ready4exam-quiz-service/internal/config"
	"ready4exam-quiz-service/internal/domain"
	identityclient "ready4exam-quiz-service/internal/infra/identity"
	"ready4exam-quiz-service/internal/infra/memory"
	pgstore "ready4exam-quiz-service/internal/infra/postgres"
	redisinfra "ready4exam-quiz-service/internal/infra/redis"
	"ready4exam-quiz-service/internal/questions"
	transport "ready4exam-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	curriculum, err := catalog.Load()
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	static := memory.NewStaticQuestionSource(sampleQuestions())
	var source questions.CategoryFetcher = static
	var counter questions.Counter = static
	if pool != nil {
		store := pgstore.NewQuestionStore(pool)
		source = store
		counter = store
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		source = redisinfra.NewQuestionCache(redisClient, source, questionTTL)
	} else {
		source = memory.NewQuestionCache(source, questionTTL)
	}

	limits := questions.DefaultLimits()
	if cfg.Questions.MCQLimit > 0 {
		limits.MCQ = cfg.Questions.MCQLimit
	}
	if cfg.Questions.AssertionReasoningLimit > 0 {
		limits.AssertionReasoning = cfg.Questions.AssertionReasoningLimit
	}
	if cfg.Questions.CaseStudyLimit > 0 {
		limits.CaseStudy = cfg.Questions.CaseStudyLimit
	}
	fetcher := questions.NewFetcher(source, counter, limits)

	var results app.ResultStore = memory.NewResultStore()
	if pool != nil {
		results = pgstore.NewResultStore(pool)
	}

	var policy auth.Policy = auth.SignedInPolicy{}
	if cfg.Auth.Policy == "purchases" && pool != nil {
		var purchases auth.PurchaseReader = pgstore.NewPurchaseStore(pool)
		if redisClient != nil {
			purchases = redisinfra.NewPurchaseCache(redisClient, purchases, redisTTL)
		}
		policy = auth.NewPurchasePolicy(purchases)
	}

	var provider auth.Provider = memory.NewStaticIdentityProvider(domain.Identity{})
	if cfg.Auth.ProviderURL != "" {
		provider = identityclient.NewProvider(cfg.Auth.ProviderURL, cfg.Auth.APIKey)
	}
	gateway := auth.NewGateway(provider, policy)
	if err := gateway.Init(ctx); err != nil {
		return err
	}

	loadTimeout := config.TTLDuration(cfg.Quiz.LoadTimeout, 15*time.Second)
	quizHandler := transport.NewQuizHandler(gateway, fetcher, results, curriculum, loadTimeout)
	apiHandler := transport.NewAPIHandler(fetcher, curriculum)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", quizHandler.ServeWS)
	mux.HandleFunc("/api/curriculum", apiHandler.Curriculum)
	mux.HandleFunc("/api/questions/count", apiHandler.QuestionCount)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds demo mode when Postgres is not configured.
func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"gravitation": {
			{
				ID:       1,
				Category: domain.CategoryMCQ,
				Text:     "What is the value of g on the surface of the Earth?",
				Options: []domain.Option{
					{ID: "a", Text: "9.8 m/s^2"},
					{ID: "b", Text: "6.7 m/s^2"},
					{ID: "c", Text: "9.8 km/s^2"},
					{ID: "d", Text: "1.6 m/s^2"},
				},
				CorrectOptionID: "a",
				Explanation:     "Acceleration due to gravity at the Earth's surface is 9.8 m/s^2.",
			},
			{
				ID:       2,
				Category: domain.CategoryAssertionReasoning,
				Text:     "Assertion: The weight of a body is less on the Moon. Reason: The Moon's gravitational pull is weaker than the Earth's.",
				Scenario: "Choose whether both statements are true and whether the reason explains the assertion.",
				Options: []domain.Option{
					{ID: "a", Text: "Both true, reason explains assertion"},
					{ID: "b", Text: "Both true, reason does not explain assertion"},
					{ID: "c", Text: "Assertion true, reason false"},
					{ID: "d", Text: "Assertion false, reason true"},
				},
				CorrectOptionID: "a",
				Explanation:     "Lunar surface gravity is about one sixth of Earth's, which directly lowers weight.",
			},
			{
				ID:       3,
				Category: domain.CategoryCaseStudy,
				Text:     "Which force keeps the satellite in orbit?",
				Scenario: "A satellite orbits the Earth at a constant altitude with constant speed.",
				Options: []domain.Option{
					{ID: "a", Text: "Frictional force"},
					{ID: "b", Text: "Gravitational force"},
					{ID: "c", Text: "Magnetic force"},
					{ID: "d", Text: "Electrostatic force"},
				},
				CorrectOptionID: "b",
				Explanation:     "Gravity provides the centripetal force that curves the satellite's path.",
			},
		},
	}
}
