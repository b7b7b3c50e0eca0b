package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rapbattle-quiz-service/internal/app"
	"rapbattle-quiz-service/internal/config"
	"rapbattle-quiz-service/internal/domain"
	filestore "rapbattle-quiz-service/internal/infra/file"
	"rapbattle-quiz-service/internal/infra/memory"
	pgloader "rapbattle-quiz-service/internal/infra/postgres"
	redisstore "rapbattle-quiz-service/internal/infra/redis"
	"rapbattle-quiz-service/internal/progress"
	transport "rapbattle-quiz-service/internal/transport/http"
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(defaultCatalogs())
	if pool != nil {
		loader = pgloader.NewCatalogLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisstore.NewCatalogRepository(redisClient, loader, bankTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, bankTTL)
	}

	bankID := cfg.BankID()
	// Validate the configured bank up front; a broken answer key must
	// abort startup, never surface mid-session.
	if _, err := catalogs.GetCatalog(ctx, bankID); err != nil {
		return err
	}

	stores := statsStoreFactory(cfg, redisClient)
	service := app.NewQuizService(catalogs)
	wsHandler := transport.NewWSHandler(service, stores, bankID)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

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

// statsStoreFactory picks the durable slot per user: redis when
// configured, a JSON file under the stats dir otherwise, plain memory
// as the last resort.
func statsStoreFactory(cfg config.Config, redisClient *redis.Client) transport.StatsStoreFactory {
	if redisClient != nil {
		return func(userKey string) progress.StatsStore {
			return redisstore.NewStatsStore(redisClient, userKey)
		}
	}
	if cfg.Stats.Dir != "" {
		return func(userKey string) progress.StatsStore {
			return filestore.NewStatsStore(cfg.Stats.Dir + "/" + userKey + ".json")
		}
	}
	log.Printf("no redis or stats dir configured; quiz stats will not survive restarts")
	var mu sync.Mutex
	stores := make(map[string]*memory.StatsStore)
	return func(userKey string) progress.StatsStore {
		mu.Lock()
		defer mu.Unlock()
		if store, ok := stores[userKey]; ok {
			return store
		}
		store := memory.NewStatsStore()
		stores[userKey] = store
		return store
	}
}

// defaultCatalogs is the built-in question bank used when no postgres
// backend is configured; swap the loader for the DB-backed one in
// production.
func defaultCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"hiphop": {
			ID: "hiphop",
			Questions: []domain.Question{
				{
					ID:            "battle_1",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryBattles,
					Difficulty:    domain.DifficultyEasy,
					Prompt:        "Quelle battle est considérée comme l'une des plus légendaires du hip-hop ?",
					Options:       []string{"Nas vs Jay-Z", "Eminem vs Vanilla Ice", "Drake vs Kendrick", "50 Cent vs Eminem"},
					CorrectAnswer: 0,
					Explanation:   "La battle entre Nas et Jay-Z est légendaire, notamment avec le diss track \"Ether\" de Nas.",
					Points:        10,
					BattleID:      "nas-jay-z",
				},
				{
					ID:            "battle_2",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryBattles,
					Difficulty:    domain.DifficultyMedium,
					Prompt:        "Quel diss track d'Ice Cube contre N.W.A est considéré comme l'un des plus brutaux ?",
					Options:       []string{"Straight Outta Compton", "No Vaseline", "Boyz-n-the-Hood", "Express Yourself"},
					CorrectAnswer: 1,
					Explanation:   "\"No Vaseline\" est considéré comme l'un des diss tracks les plus brutaux de l'histoire du hip-hop.",
					Points:        15,
					BattleID:      "ice-cube-nwa",
				},
				{
					ID:            "battle_3",
					Kind:          domain.KindTrueFalse,
					Category:      domain.CategoryHistory,
					Difficulty:    domain.DifficultyEasy,
					Prompt:        "La battle entre 2Pac et Biggie a contribué à la rivalité East Coast vs West Coast.",
					CorrectAnswer: 0,
					Explanation:   "Vrai. Cette battle a intensifié la rivalité entre les côtes Est et Ouest dans les années 90.",
					Points:        10,
					BattleID:      "tupac-biggie",
				},
				{
					ID:            "lyrics_1",
					Kind:          domain.KindCompleteLyrics,
					Category:      domain.CategoryLyrics,
					Difficulty:    domain.DifficultyHard,
					Prompt:        "Complétez cette ligne célèbre de \"Ether\" par Nas : \"You a fan, a phony, a fake, a pussy, a Stan...\"",
					Options:       []string{"I still whip your ass", "You're not a killer", "I embarrass you", "You're just a wannabe"},
					CorrectAnswer: 0,
					Explanation:   "La ligne complète est \"You a fan, a phony, a fake, a pussy, a Stan / I still whip your ass\"",
					Points:        20,
					BattleID:      "nas-jay-z",
				},
				{
					ID:            "battle_4",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryBattles,
					Difficulty:    domain.DifficultyMedium,
					Prompt:        "Quel rappeur a détruit Machine Gun Kelly avec \"Killshot\" ?",
					Options:       []string{"Drake", "Kendrick Lamar", "Eminem", "50 Cent"},
					CorrectAnswer: 2,
					Explanation:   "Eminem a répondu à MGK avec \"Killshot\", considéré comme un KO technique.",
					Points:        15,
					BattleID:      "eminem-mgk",
				},
				{
					ID:            "battle_5",
					Kind:          domain.KindTrueFalse,
					Category:      domain.CategoryHistory,
					Difficulty:    domain.DifficultyMedium,
					Prompt:        "Drake a gagné sa battle contre Pusha T selon la majorité des critiques.",
					CorrectAnswer: 1,
					Explanation:   "Faux. \"The Story of Adidon\" de Pusha T est généralement considéré comme ayant mis fin à cette battle.",
					Points:        15,
					BattleID:      "drake-pusha-t",
				},
				{
					ID:            "artists_1",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryArtists,
					Difficulty:    domain.DifficultyEasy,
					Prompt:        "Quel rappeur est surnommé \"The King of New York\" ?",
					Options:       []string{"Jay-Z", "Nas", "The Notorious B.I.G.", "Tous les trois"},
					CorrectAnswer: 3,
					Explanation:   "Les trois rappeurs ont tous revendiqué ce titre à différentes époques.",
					Points:        10,
				},
				{
					ID:         "chronology_1",
					Kind:       domain.KindChronology,
					Category:   domain.CategoryHistory,
					Difficulty: domain.DifficultyHard,
					Prompt:     "Dans quel ordre chronologique ces battles ont-elles eu lieu ?",
					Options: []string{
						"Ice Cube vs N.W.A → 2Pac vs Biggie → Nas vs Jay-Z → Drake vs Pusha T",
						"Nas vs Jay-Z → Ice Cube vs N.W.A → 2Pac vs Biggie → Drake vs Pusha T",
						"2Pac vs Biggie → Ice Cube vs N.W.A → Nas vs Jay-Z → Drake vs Pusha T",
						"Drake vs Pusha T → Nas vs Jay-Z → Ice Cube vs N.W.A → 2Pac vs Biggie",
					},
					CorrectAnswer: 0,
					Explanation:   "L'ordre correct : Ice Cube vs N.W.A (1991) → 2Pac vs Biggie (1994-1997) → Nas vs Jay-Z (2001) → Drake vs Pusha T (2018)",
					Points:        25,
				},
				{
					ID:            "lyrics_2",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryLyrics,
					Difficulty:    domain.DifficultyMedium,
					Prompt:        "Qui a rappé : \"I got the story of Adidon\" ?",
					Options:       []string{"Drake", "Pusha T", "Kendrick Lamar", "J. Cole"},
					CorrectAnswer: 1,
					Explanation:   "Pusha T dans son diss track \"The Story of Adidon\" contre Drake.",
					Points:        15,
					BattleID:      "drake-pusha-t",
				},
				{
					ID:            "battle_6",
					Kind:          domain.KindTrueFalse,
					Category:      domain.CategoryBattles,
					Difficulty:    domain.DifficultyEasy,
					Prompt:        "Eminem n'a jamais perdu une battle de diss tracks.",
					CorrectAnswer: 1,
					Explanation:   "Faux. Bien qu'Eminem soit redoutable, il a eu quelques échanges où l'opinion était partagée.",
					Points:        10,
				},
				{
					ID:            "lyrics_4",
					Kind:          domain.KindMultipleChoice,
					Category:      domain.CategoryLyrics,
					Difficulty:    domain.DifficultyMedium,
					Prompt:        "Quel diss track d'Eminem a \"mis le clou dans le cercueil\" de Benzino ?",
					Options:       []string{"The Sauce", "Nail in the Coffin", "Bully", "Go to Sleep"},
					CorrectAnswer: 1,
					Explanation:   "\"Nail in the Coffin\" (littéralement \"clou dans le cercueil\") a effectivement terminé la carrière de Benzino.",
					Points:        15,
					BattleID:      "benzino-eminem",
				},
				{
					ID:            "battle_14",
					Kind:          domain.KindTrueFalse,
					Category:      domain.CategoryBattles,
					Difficulty:    domain.DifficultyEasy,
					Prompt:        "Fat Joe s'est impliqué dans le beef 50 Cent vs Ja Rule pour défendre son ami.",
					CorrectAnswer: 0,
					Explanation:   "Vrai. Fat Joe a défendu Ja Rule dans son conflit contre 50 Cent, étendant ainsi la battle.",
					Points:        10,
					BattleID:      "fat-joe-50-cent",
				},
			},
		},
	}
}
