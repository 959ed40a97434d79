package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/session"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は実環境変数）
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("config load failed", "error", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalw("db connect failed", "error", err)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
	); err != nil {
		log.Fatalw("migrate failed", "error", err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, cfg.DeliveryFee, cfg.TaxRate)

	//ゲストセッション発行
	issuer := session.NewIssuer(cfg.SessionSecret, session.GuestTTL)

	//Handler生成
	sessionH := handler.NewSessionHandler(issuer)
	productH := handler.NewProductHandler(productUC)
	adminProductH := handler.NewAdminProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)

	//Server起動
	e := server.New(cfg, sessionH, productH, adminProductH, cartH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.Infow("starting server", "addr", addr, "env", cfg.GoEnv)
	if err := server.Start(e, addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
