package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/tran-hoang-nhan/phone-shop/internal/auth"
	"github.com/tran-hoang-nhan/phone-shop/internal/eventengine"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/cart"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/order"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/product"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/review"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/stockalert"
	"github.com/tran-hoang-nhan/phone-shop/internal/features/user"
	"github.com/tran-hoang-nhan/phone-shop/internal/middlewares"
)

type ServerConfig struct {
	Addr             string
	DB               *mongo.Database
	DBClose          func(context.Context) error
	Cache            *redis.Client
	TokenManager     *auth.TokenService
	RestockThreshold int
}

type server struct {
	*ServerConfig

	doneCh        chan struct{}   // signals internal go routines to shutdown
	internalSrvWG *sync.WaitGroup // waits for internal go routines before the process exits

	eventEngine eventengine.SubscribeRegisterPublisher
	srv         *http.Server
}

func NewServer(serverConfig *ServerConfig) *server {
	srv := &server{
		ServerConfig:  serverConfig,
		doneCh:        make(chan struct{}),
		internalSrvWG: &sync.WaitGroup{},
	}

	return srv
}

func (s *server) Run() {
	router := chi.NewRouter()

	// strip trailing slashes at the end of the url
	// e.g. /products/1/ -> /products/1
	router.Use(chimiddleware.StripSlashes)

	s.prep()

	router.Mount("/api", s.apiRouter())

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.Addr),
		Handler: router,
	}

	// start server and listen for [os.Signal] signals to gracefully shutdown.
	s.listenAndServe()
}

func (s *server) listenAndServe() {
	shutdownCtx, shutdownCancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer shutdownCancel()

	errGrp, shutdownCtx := errgroup.WithContext(shutdownCtx)

	errGrp.Go(
		func() error {
			log.Printf("server started and is listening at port %s...\n", s.Addr)

			if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}

			return nil
		},
	)

	errGrp.Go(
		func() error {
			<-shutdownCtx.Done() // block and listen for shutdown signals
			println()
			log.Println("hold and wait, server is gracefully shutting down...")

			ctx, cancel := context.WithTimeout(
				context.Background(),
				(20 * time.Second),
			)
			defer cancel()

			log.Println("server has stopped receiving new requests")
			log.Println("waiting for all pending requests to finish....")
			if err := s.srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server failed shutdown gracefully: %w", err)
			}

			return nil
		},
	)

	if err := errGrp.Wait(); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("all pending requests completed!")

	log.Println("waiting for all internal pending go routines....")
	close(s.doneCh)
	s.internalSrvWG.Wait()
	log.Println("all internal go routines are done")

	log.Println("closing other resources...")

	closeCtx, closeCancel := context.WithTimeout(
		context.Background(),
		(10 * time.Second),
	)
	defer closeCancel()

	if err := s.DBClose(closeCtx); err != nil {
		log.Println("server failed to close db for shutdown")
	}

	if err := s.Cache.Close(); err != nil {
		log.Println("server failed to close cache for shutdown")
	}

	log.Println("server has been gracefully shutdown")
	os.Exit(0)
}

// prep prepares server dependencies needed for the server to function.
func (s *server) prep() {
	s.eventEngine = eventengine.NewEventEngine(
		&eventengine.EventEngineConfig{
			DoneCh:        s.doneCh,
			InternalSrvWG: s.internalSrvWG,
		},
	)
}

func (s *server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	// health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.ensureIndexes()

	// middleware
	middleware := middlewares.NewMiddleware(
		s.TokenManager,
	)

	// user feature
	userStore := user.NewStore(s.DB)
	userService := user.NewService(userStore, s.TokenManager)
	userHandler := user.NewHandler(userService, middleware)
	userHandler.RegisterRoutes(r)

	// product feature, with the cache-aside decorator over the mongo store
	productStore := product.NewCachedStore(
		product.NewStore(s.DB),
		s.Cache,
	)
	productService := product.NewService(productStore)
	productHandler := product.NewHandler(
		productService,
		middleware,
	)
	productHandler.RegisterRoutes(r)

	// cart feature
	cartStore := cart.NewStore(s.DB)
	cartService := cart.NewService(cartStore)
	cartHandler := cart.NewHandler(cartService, middleware)
	cartHandler.RegisterRoutes(r)

	// order feature
	orderStore := order.NewStore(s.DB)
	orderService := order.NewService(
		orderStore,
		productService,
		cartService,
		s.eventEngine,
	)
	orderHandler := order.NewHandler(orderService, middleware)
	orderHandler.RegisterRoutes(r)

	// review feature
	reviewStore := review.NewStore(s.DB)
	reviewService := review.NewService(
		reviewStore,
		productService,
		orderService,
	)
	reviewHandler := review.NewHandler(reviewService, middleware)
	reviewHandler.RegisterRoutes(r)

	// stock alert subscriber
	stockalert.NewEventHandler(
		&stockalert.HandlerEventsConfig{
			DoneCh:           s.doneCh,
			InternalSrvWG:    s.internalSrvWG,
			EventEngine:      s.eventEngine,
			RestockThreshold: s.RestockThreshold,
		},
	)

	return r
}

func (s *server) ensureIndexes() {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		(30 * time.Second),
	)
	defer cancel()

	for name, ensure := range map[string]func(context.Context) error{
		"products": product.NewStore(s.DB).EnsureIndexes,
		"reviews":  review.NewStore(s.DB).EnsureIndexes,
		"carts":    cart.NewStore(s.DB).EnsureIndexes,
		"orders":   order.NewStore(s.DB).EnsureIndexes,
		"users":    user.NewStore(s.DB).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("failed to ensure %s indexes: %v", name, err)
		}
	}
}
