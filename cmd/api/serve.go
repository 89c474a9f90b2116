package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/broker"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/localstore"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/search"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/promotion"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"
	"storefront/internal/wishlist"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	cartWriteBuffer  = 256
	cartWriteTimeout = 5 * time.Second
	productCacheTTL  = 5 * time.Minute
	providerTimeout  = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//ローカルKV
	local, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer func() { _ = local.Close() }()

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	videoRepo := infraRepo.NewVideoGormRepository(gormDB)
	bannerRepo := infraRepo.NewBannerGormRepository(gormDB)
	attemptRepo := infraRepo.NewCheckoutAttemptGormRepository(gormDB)
	docs := infraRepo.NewDocumentGormStore(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//任意：Redis（商品一覧キャッシュ）
	var productCache usecase.ProductListCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      productCacheTTL,
		})
		if err != nil {
			log.Warn("redis unavailable, product cache disabled", zap.Error(err))
		} else {
			defer func(c *redis.Client) { _ = c.Close() }(rdb)
			productCache = cache.NewProductListCache(rdb, productCacheTTL)
		}
	}

	//任意：Elasticsearch（商品検索）
	var productSearch usecase.ProductSearchIndex
	if len(cfg.ElasticAddresses) > 0 {
		es, err := search.NewClient(search.Config{
			Addresses: cfg.ElasticAddresses,
			Username:  cfg.ElasticUsername,
			Password:  cfg.ElasticPassword,
		})
		if err != nil {
			log.Warn("elasticsearch unavailable, db search only", zap.Error(err))
		} else {
			productSearch = search.NewProductIndex(es)
		}
	}

	//任意：Kafka（プラットフォーム通知）
	var publisher notification.Publisher = notification.LogPublisher{Log: log}
	if len(cfg.KafkaBrokers) > 0 {
		kp := broker.NewKafkaPublisher(broker.Config{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaNotificationTopic,
			WriteTimeout: 10 * time.Second,
		})
		defer func() { _ = kp.Close() }()
		publisher = kp
	}

	//決済プロバイダ（設定のあるものだけ）
	var providers []payment.Provider
	if cfg.PayPalClientID != "" {
		providers = append(providers, payment.NewPayPalClient(payment.PayPalConfig{
			BaseURL:      cfg.PayPalBaseURL,
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			Timeout:      providerTimeout,
		}))
	}
	if cfg.RazorpayKeyID != "" {
		providers = append(providers, payment.NewRazorpayClient(payment.RazorpayConfig{
			BaseURL:   cfg.RazorpayBaseURL,
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			Timeout:   providerTimeout,
		}))
	}
	if len(providers) == 0 {
		log.Warn("no payment provider configured")
	}

	//ストア、通知、プロモーション
	cartWriter := cart.NewAsyncWriter(docs, log, cartWriteBuffer, cartWriteTimeout)
	carts := cart.NewManager(docs, cartWriter, log)
	lists := wishlist.NewManager(wishlist.NewTieredBackend(docs, local, log))
	gateway := notification.NewGateway(docs, publisher, log)
	scheduler := promotion.NewScheduler(promotion.DefaultCatalog(), local, gateway, log)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, reviewRepo, txm, productCache, productSearch, log)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo, userRepo)
	cartUC := usecase.NewCartUsecase(carts, productRepo)
	wishlistUC := usecase.NewWishlistUsecase(lists, productRepo)
	orderUC := usecase.NewOrderUsecase(local)
	checkoutUC := usecase.NewCheckoutUsecase(attemptRepo, payment.NewRegistry(providers...), carts, orderUC, gateway, cfg.SuccessRedirect, log)
	sessionUC := usecase.NewSessionUsecase(scheduler, carts, lists)
	notificationUC := usecase.NewNotificationUsecase(gateway)
	adminUC := usecase.NewAdminUsecase(userRepo, auditRepo, txm)
	mediaUC := usecase.NewMediaUsecase(videoRepo, bannerRepo, auditRepo)

	//Handler生成
	e := server.New(cfg, log, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, sessionUC),
		Product:      handler.NewProductHandler(productUC, reviewUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		Notification: handler.NewNotificationHandler(notificationUC, sessionUC),
		Media:        handler.NewMediaHandler(mediaUC),
		AdminUser:    handler.NewAdminUserHandler(adminUC),
	})

	//Server起動
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, e, server.Addr(cfg.Port), log)
	})

	err = g.Wait()

	//タイマー停止 → カート書き込みを流し切る（この後deferでKafka, Redis, LevelDB, DBの順に閉じる）
	scheduler.Close()
	cartWriter.Close()
	log.Info("shutdown complete")
	return err
}
